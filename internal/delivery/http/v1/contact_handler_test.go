package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/config"
	v1 "github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/delivery/http/v1"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/domain"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/usecase"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fallback = "fallback@example.com"

type MockContactUsecase struct {
	mock.Mock
}

func (m *MockContactUsecase) Submit(ctx context.Context, req *domain.ContactRequest) (*domain.ContactReceipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactReceipt), args.Error(1)
}

func (m *MockContactUsecase) FallbackContact() string {
	return fallback
}

type envelope struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Errors    []domain.FieldError `json:"errors"`
	Data      json.RawMessage     `json:"data"`
	Debug     map[string]any      `json:"debug"`
	RequestID string              `json:"request_id"`
}

func newTestRouter(uc domain.ContactUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return v1.NewRouter(v1.RouterDeps{
		ContactUC: uc,
		HealthUC:  usecase.NewHealthUsecase(),
		Audit:     security.NewSecurityLogger(zap.NewNop(), "test", "test"),
		Config: &config.Config{
			GinMode:              gin.TestMode,
			AllowedOrigins:       []string{"https://portfolio.example.com"},
			FallbackContactEmail: fallback,
		},
	})
}

func postJSON(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

const validBody = `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"Hello"}`

func TestSubmitContact(t *testing.T) {
	t.Run("Should return 200 with the receipt", func(t *testing.T) {
		uc := new(MockContactUsecase)
		uc.On("Submit", mock.Anything, mock.MatchedBy(func(r *domain.ContactRequest) bool {
			return r.Name == "Ada" && r.Email == "ada@example.com"
		})).Return(&domain.ContactReceipt{
			MainEmail: domain.MainEmailReceipt{Service: "SendGrid", MessageID: "sg-1", StatusCode: 202, Recipient: "owner@example.com"},
			AutoReply: domain.AutoReplyOutcome{Status: domain.AutoReplySent, Service: "SendGrid"},
		}, nil).Once()

		w, env := postJSON(t, newTestRouter(uc), validBody)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.Equal(t, "Thank you for your message! I'll get back to you soon.", env.Message)
		assert.NotEmpty(t, env.RequestID)
		assert.Equal(t, env.RequestID, w.Header().Get("X-Request-ID"))

		var data struct {
			MainEmail struct {
				Service string `json:"service"`
			} `json:"mainEmail"`
			AutoReply struct {
				Status string `json:"status"`
			} `json:"autoReply"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "SendGrid", data.MainEmail.Service)
		assert.Equal(t, "sent", data.AutoReply.Status)
		uc.AssertExpectations(t)
	})

	t.Run("Should accept form-encoded submissions", func(t *testing.T) {
		uc := new(MockContactUsecase)
		uc.On("Submit", mock.Anything, mock.MatchedBy(func(r *domain.ContactRequest) bool {
			return r.Subject == "Hi" && r.Message == "Hello"
		})).Return(&domain.ContactReceipt{}, nil).Once()

		form := url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "subject": {"Hi"}, "message": {"Hello"}}
		req := httptest.NewRequest(http.MethodPost, "/v1/contact", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		newTestRouter(uc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertExpectations(t)
	})

	t.Run("Should reject a malformed body with 400", func(t *testing.T) {
		uc := new(MockContactUsecase)
		w, env := postJSON(t, newTestRouter(uc), `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Please check your input and try again.", env.Message)
		uc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("Should return 400 with field errors on validation failure", func(t *testing.T) {
		uc := new(MockContactUsecase)
		uc.On("Submit", mock.Anything, mock.Anything).Return(nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "name", Message: "Name is required."},
			{Field: "general", Message: "Please fill in all required fields."},
		}}).Once()

		w, env := postJSON(t, newTestRouter(uc), `{"email":"ada@example.com","subject":"Hi","message":"Hello"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Please check your input and try again.", env.Message)
		assert.Equal(t, []domain.FieldError{
			{Field: "name", Message: "Name is required."},
			{Field: "general", Message: "Please fill in all required fields."},
		}, env.Errors)
	})

	t.Run("Should return 500 pointing at the fallback when nothing is configured", func(t *testing.T) {
		uc := new(MockContactUsecase)
		uc.On("Submit", mock.Anything, mock.Anything).Return(nil, &domain.DeliveryError{
			Attempts: []*domain.DeliveryAttempt{
				{Channel: domain.ChannelPrimary, Provider: "SendGrid", Key: "sendgrid", Kind: domain.KindNotConfigured},
				{Channel: domain.ChannelSecondary, Provider: "Gmail SMTP", Key: "gmail", Kind: domain.KindNotConfigured},
			},
			Timestamp: time.Now(),
		}).Once()

		w, env := postJSON(t, newTestRouter(uc), validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Email service is not configured. Please contact me directly at "+fallback, env.Message)
		assert.Equal(t, []domain.FieldError{{Field: "server", Message: "No email service configuration found."}}, env.Errors)
		assert.Equal(t, false, env.Debug["primaryAttempted"])
		assert.Equal(t, false, env.Debug["secondaryConfigured"])
	})

	t.Run("Should return 500 with per-provider errors when delivery fails", func(t *testing.T) {
		uc := new(MockContactUsecase)
		uc.On("Submit", mock.Anything, mock.Anything).Return(nil, &domain.DeliveryError{
			Attempts: []*domain.DeliveryAttempt{
				{Channel: domain.ChannelPrimary, Provider: "SendGrid", Key: "sendgrid", Configured: true, Attempted: true, Kind: domain.KindAuth},
				{Channel: domain.ChannelSecondary, Provider: "Gmail SMTP", Key: "gmail", Kind: domain.KindNotConfigured},
			},
			Timestamp: time.Now(),
		}).Once()

		w, env := postJSON(t, newTestRouter(uc), validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to send email. Please contact me directly at "+fallback, env.Message)
		assert.Equal(t, []domain.FieldError{
			{Field: "sendgrid", Message: "SendGrid authentication failed - check credentials"},
			{Field: "gmail", Message: "Gmail SMTP not configured as fallback"},
		}, env.Errors)
		assert.Equal(t, true, env.Debug["primaryAttempted"])
	})

	t.Run("Should hide unexpected errors behind the generic 500", func(t *testing.T) {
		uc := new(MockContactUsecase)
		uc.On("Submit", mock.Anything, mock.Anything).Return(nil, errors.New("template exploded")).Once()

		w, env := postJSON(t, newTestRouter(uc), validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "An unexpected error occurred. Please contact me directly at "+fallback, env.Message)
		assert.Equal(t, []domain.FieldError{{Field: "server", Message: "Internal server error."}}, env.Errors)
		assert.Equal(t, "template exploded", env.Debug["error"])
		assert.NotEmpty(t, env.Debug["timestamp"])
	})

	t.Run("Should recover from a panic with the generic 500", func(t *testing.T) {
		uc := new(MockContactUsecase)
		uc.On("Submit", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			panic("nil map write in renderer")
		}).Once()

		w, env := postJSON(t, newTestRouter(uc), validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "An unexpected error occurred. Please contact me directly at "+fallback, env.Message)
		assert.Equal(t, "server", env.Errors[0].Field)
		assert.Equal(t, "nil map write in renderer", env.Debug["error"])
		assert.NotEmpty(t, env.Debug["timestamp"])
	})
}

func TestRouterMiddleware(t *testing.T) {
	r := newTestRouter(new(MockContactUsecase))

	t.Run("Should answer preflight for allowed origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/contact", nil)
		req.Header.Set("Origin", "https://portfolio.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://portfolio.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Should refuse preflight for unknown origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/contact", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Should report health with security headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	})
}
