package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// Owner is the portfolio owner signing the auto-reply.
type Owner struct {
	Name         string
	Title        string
	Phone        string
	PortfolioURL string
}

// ContactEmailData holds the data for contact form emails
type ContactEmailData struct {
	SenderName  string
	SenderEmail string
	Subject     string
	Message     string
	ReceivedAt  time.Time
	Owner       Owner
}

// MessageLines splits the message so the HTML template can join lines with <br>.
func (d ContactEmailData) MessageLines() []string {
	return strings.Split(strings.ReplaceAll(d.Message, "\r\n", "\n"), "\n")
}

// Time formats ReceivedAt for humans.
func (d ContactEmailData) Time() string {
	return d.ReceivedAt.Format("Jan 2, 2006 3:04 PM MST")
}

func ContactSubject(subject string) string {
	return fmt.Sprintf("Portfolio Contact: %s", subject)
}

func AutoReplySubject(subject string) string {
	return fmt.Sprintf("Re: %s - Message Received", subject)
}

const contactHTMLTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; background-color: #ffffff;">
  <div style="background: linear-gradient(135deg, #007AFF 0%, #0051D5 100%); color: white; padding: 30px; text-align: center;">
    <h1 style="margin: 0; font-size: 24px; font-weight: 600;">New Contact Message</h1>
    <p style="margin: 10px 0 0 0; opacity: 0.9;">From your portfolio website</p>
  </div>
  <div style="padding: 30px;">
    <div style="background-color: #f8fafc; padding: 25px; border-radius: 12px; margin-bottom: 25px; border-left: 4px solid #007AFF;">
      <h2 style="margin: 0 0 20px 0; color: #1a202c; font-size: 18px;">Contact Details</h2>
      <table style="width: 100%; border-collapse: collapse;">
        <tr><td style="padding: 8px 0; font-weight: 600; color: #4a5568; width: 100px;">Name:</td><td style="padding: 8px 0; color: #1a202c;">{{.SenderName}}</td></tr>
        <tr><td style="padding: 8px 0; font-weight: 600; color: #4a5568;">Email:</td><td style="padding: 8px 0;"><a href="mailto:{{.SenderEmail}}" style="color: #007AFF; text-decoration: none;">{{.SenderEmail}}</a></td></tr>
        <tr><td style="padding: 8px 0; font-weight: 600; color: #4a5568;">Subject:</td><td style="padding: 8px 0; color: #1a202c;">{{.Subject}}</td></tr>
        <tr><td style="padding: 8px 0; font-weight: 600; color: #4a5568;">Time:</td><td style="padding: 8px 0; color: #1a202c;">{{.Time}}</td></tr>
      </table>
    </div>
    <div style="margin-bottom: 25px;">
      <h3 style="margin: 0 0 15px 0; color: #1a202c; font-size: 16px;">Message:</h3>
      <div style="background-color: #ffffff; padding: 20px; border: 1px solid #e2e8f0; border-radius: 8px; line-height: 1.6; color: #2d3748;">
        {{range $i, $line := .MessageLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}
      </div>
    </div>
    <div style="text-align: center; margin-top: 30px;">
      <a href="mailto:{{.SenderEmail}}?subject=Re: {{.Subject}}" style="background-color: #007AFF; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: 500; display: inline-block;">Reply to {{.SenderName}}</a>
    </div>
  </div>
  <div style="background-color: #f7fafc; padding: 20px; text-align: center; border-top: 1px solid #e2e8f0;">
    <p style="margin: 0; color: #718096; font-size: 14px;">This message was sent from your portfolio contact form.<br>You can reply directly to this email to respond to {{.SenderName}}.</p>
  </div>
</div>`

const contactTextTemplate = `New Contact Form Submission

Name: {{.SenderName}}
Email: {{.SenderEmail}}
Subject: {{.Subject}}
Time: {{.Time}}

Message:
{{.Message}}

---
This message was sent from your portfolio contact form.
You can reply directly to this email to respond to {{.SenderName}}.
`

const autoReplyHTMLTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; background-color: #ffffff;">
  <div style="background: linear-gradient(135deg, #007AFF 0%, #0051D5 100%); color: white; padding: 30px; text-align: center;">
    <h1 style="margin: 0; font-size: 24px; font-weight: 600;">Thank You for Your Message</h1>
    <p style="margin: 10px 0 0 0; opacity: 0.9;">Auto-reply from {{.Owner.Name}}</p>
  </div>
  <div style="padding: 30px;">
    <p style="color: #1a202c; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">Hi <strong>{{.SenderName}}</strong>,</p>
    <p style="color: #1a202c; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">Thanks for reaching out! I've received your message and will get back to you as soon as possible.</p>
    <div style="background-color: #f8fafc; padding: 20px; border-radius: 8px; margin: 25px 0; border-left: 4px solid #007AFF;">
      <h3 style="margin: 0 0 15px 0; color: #1a202c; font-size: 16px;">Your message:</h3>
      <div style="color: #4a5568; line-height: 1.6;">
        <strong>Subject:</strong> {{.Subject}}<br><br>
        {{range $i, $line := .MessageLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}
      </div>
    </div>
    <p style="color: #1a202c; font-size: 16px; line-height: 1.6; margin-bottom: 30px;">I typically respond within 24-48 hours.{{if .Owner.Phone}} If your inquiry is urgent, feel free to call me at {{.Owner.Phone}}.{{end}}</p>
    <p style="color: #1a202c; font-size: 16px; line-height: 1.6;">Best regards,<br><strong>{{.Owner.Name}}</strong>{{if .Owner.Title}}<br><span style="color: #007AFF;">{{.Owner.Title}}</span>{{end}}</p>
  </div>
  <div style="background-color: #f7fafc; padding: 20px; text-align: center; border-top: 1px solid #e2e8f0;">
    <p style="margin: 0; color: #718096; font-size: 14px;">This is an automated response. Please do not reply to this email.{{if .Owner.PortfolioURL}}<br>Visit my portfolio: <a href="{{.Owner.PortfolioURL}}" style="color: #007AFF;">{{.Owner.PortfolioURL}}</a>{{end}}</p>
  </div>
</div>`

const autoReplyTextTemplate = `Hi {{.SenderName}},

Thanks for reaching out! I've received your message and will get back to you as soon as possible.

Your message:
Subject: {{.Subject}}

{{.Message}}

I typically respond within 24-48 hours.{{if .Owner.Phone}} If your inquiry is urgent, feel free to call me at {{.Owner.Phone}}.{{end}}

Best regards,
{{.Owner.Name}}{{if .Owner.Title}}
{{.Owner.Title}}{{end}}

---
This is an automated response. Please do not reply to this email.{{if .Owner.PortfolioURL}}
Visit my portfolio: {{.Owner.PortfolioURL}}{{end}}
`

var (
	contactHTML   = htmltemplate.Must(htmltemplate.New("contact.html").Parse(contactHTMLTemplate))
	contactText   = texttemplate.Must(texttemplate.New("contact.txt").Parse(contactTextTemplate))
	autoReplyHTML = htmltemplate.Must(htmltemplate.New("auto_reply.html").Parse(autoReplyHTMLTemplate))
	autoReplyText = texttemplate.Must(texttemplate.New("auto_reply.txt").Parse(autoReplyTextTemplate))
)

// RenderContactNotification renders the owner-facing notification bodies.
func RenderContactNotification(data ContactEmailData) (htmlBody, textBody string, err error) {
	return render(contactHTML, contactText, data)
}

// RenderAutoReply renders the acknowledgment sent back to the submitter.
func RenderAutoReply(data ContactEmailData) (htmlBody, textBody string, err error) {
	return render(autoReplyHTML, autoReplyText, data)
}

func render(h *htmltemplate.Template, t *texttemplate.Template, data ContactEmailData) (string, string, error) {
	var htmlBuf, textBuf bytes.Buffer
	if err := h.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute %s template: %w", h.Name(), err)
	}
	if err := t.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute %s template: %w", t.Name(), err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}
