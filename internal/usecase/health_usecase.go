package usecase

import "context"

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

// ProviderStatus is the slice of a provider the health check needs.
type ProviderStatus interface {
	Name() string
	Configured() bool
}

type healthUsecase struct {
	providers []ProviderStatus
}

// NewHealthUsecase reports on the given providers; nil entries are skipped.
func NewHealthUsecase(providers ...ProviderStatus) HealthUsecase {
	return &healthUsecase{providers: providers}
}

// Check never exposes credentials, only whether each provider has them.
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status": "ok",
	}

	configured := 0
	for _, p := range u.providers {
		if p == nil {
			continue
		}
		state := "not_configured"
		if p.Configured() {
			state = "configured"
			configured++
		}
		status[p.Name()] = state
	}
	if configured == 0 {
		status["status"] = "degraded"
	}
	return status
}
