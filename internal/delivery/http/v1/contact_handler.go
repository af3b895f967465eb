package v1

import (
	"errors"
	"net/http"

	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/delivery/http/response"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/domain"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const (
	msgContactSent      = "Thank you for your message! I'll get back to you soon."
	msgInvalidInput     = "Please check your input and try again."
	msgNotConfigured    = "Email service is not configured. Please contact me directly at "
	msgDeliveryFailed   = "Failed to send email. Please contact me directly at "
	msgMalformedRequest = "Request body could not be parsed."
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	public.POST("/contact", handler.SubmitContact)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Delivers a portfolio contact message to the site owner and sends an auto-reply to the visitor.
// @Tags         contact
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response{data=domain.ContactReceipt}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(apperror.New(http.StatusBadRequest, msgInvalidInput, err).
			WithErrors(apperror.FieldError{Field: "general", Message: msgMalformedRequest}))
		return
	}

	receipt, err := h.contactUC.Submit(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(h.mapError(err))
		return
	}

	response.Success(c, http.StatusOK, msgContactSent, receipt)
}

// mapError translates the usecase's handled failures into envelope errors.
// Anything else is left for ErrorHandler's generic 500.
func (h *ContactHandler) mapError(err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return apperror.BadRequest(msgInvalidInput).
			WithErrors(toFieldErrors(validationErr.Fields)...)
	}

	var deliveryErr *domain.DeliveryError
	if errors.As(err, &deliveryErr) {
		message := msgDeliveryFailed + h.contactUC.FallbackContact()
		if !deliveryErr.AnyConfigured() {
			message = msgNotConfigured + h.contactUC.FallbackContact()
		}
		return apperror.New(http.StatusInternalServerError, message, err).
			WithErrors(toFieldErrors(deliveryErr.FieldErrors())...).
			WithDebug(deliveryErr.Debug())
	}

	return err
}

func toFieldErrors(fields []domain.FieldError) []apperror.FieldError {
	out := make([]apperror.FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, apperror.FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}
