package service

import (
	"context"
	"errors"
	"kusina-service/internal/auth"
	"kusina-service/internal/entity"
	"kusina-service/internal/repository"
	"strings"
	"time"
)

type SettingsService struct {
	settings SettingsStore
	now      func() time.Time
}

func NewSettingsService(settings SettingsStore) *SettingsService {
	return &SettingsService{settings: settings, now: time.Now}
}

func (s *SettingsService) Get(ctx context.Context, p auth.Principal) (*entity.Settings, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	settings, err := s.load(ctx)
	if err != nil {
		return nil, internalError(err, "loading settings")
	}
	return settings, nil
}

func (s *SettingsService) Save(ctx context.Context, p auth.Principal, settings entity.Settings) (*entity.Settings, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	settings.StoreName = strings.TrimSpace(settings.StoreName)
	settings.StoreEmail = strings.ToLower(strings.TrimSpace(settings.StoreEmail))
	if err := validateStruct(settings); err != nil {
		return nil, err
	}

	settings.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if err := s.settings.Save(ctx, &settings); err != nil {
		return nil, internalError(err, "saving settings")
	}

	logger.Info().Msg("Store settings saved")
	return &settings, nil
}

// Current is what notifications read. It falls back to the defaults when
// nothing is stored or the store cannot be reached.
func (s *SettingsService) Current(ctx context.Context) entity.Settings {
	settings, err := s.load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error loading settings, using defaults")
		return entity.DefaultSettings()
	}
	return *settings
}

func (s *SettingsService) load(ctx context.Context) (*entity.Settings, error) {
	settings, err := s.settings.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		defaults := entity.DefaultSettings()
		return &defaults, nil
	}
	return settings, err
}
