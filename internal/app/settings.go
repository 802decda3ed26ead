package app

import (
	"context"
	"strings"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

type SettingsService struct {
	repo ports.SettingsRepository
}

func NewSettingsService(repo ports.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	return s.repo.Get(ctx)
}

func (s *SettingsService) Put(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	// Validation légère V1.
	if settings.CheckIntervalMinutes <= 0 {
		settings.CheckIntervalMinutes = domain.DefaultSettings().CheckIntervalMinutes
	}
	if strings.TrimSpace(settings.RegistrationURL) == "" {
		settings.RegistrationURL = domain.DefaultSettings().RegistrationURL
	}
	if settings.MaxConcurrentChecks <= 0 {
		settings.MaxConcurrentChecks = domain.DefaultSettings().MaxConcurrentChecks
	}
	return s.repo.Put(ctx, settings)
}
