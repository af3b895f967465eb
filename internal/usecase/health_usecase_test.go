package usecase_test

import (
	"context"
	"testing"

	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/usecase"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/email"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	t.Run("Should be ok when one provider is configured", func(t *testing.T) {
		status := usecase.NewHealthUsecase(
			newMockProvider(email.ProviderSendGrid, false),
			newMockProvider(email.ProviderSMTP, true),
		).Check(context.Background())

		assert.Equal(t, "ok", status["status"])
		assert.Equal(t, "not_configured", status[email.ProviderSendGrid])
		assert.Equal(t, "configured", status[email.ProviderSMTP])
	})

	t.Run("Should be degraded without providers", func(t *testing.T) {
		status := usecase.NewHealthUsecase(newMockProvider(email.ProviderSendGrid, false)).Check(context.Background())
		assert.Equal(t, "degraded", status["status"])
	})
}
