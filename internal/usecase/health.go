package usecase

import (
	"context"
	"os"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	uploadDir      string
	mailConfigured bool
}

func NewHealthUsecase(uploadDir string, mailConfigured bool) HealthUsecase {
	return &healthUsecase{
		uploadDir:      uploadDir,
		mailConfigured: mailConfigured,
	}
}

// Check is a liveness report; degraded components never fail it.
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status":  "ok",
		"uploads": "ok",
		"mail":    "configured",
	}

	if info, err := os.Stat(u.uploadDir); err != nil || !info.IsDir() {
		status["uploads"] = "unavailable"
	}
	if !u.mailConfigured {
		status["mail"] = "not_configured"
	}

	return status
}
