package services

import (
	"context"
	"fmt"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/ports"
)

// ConfigService manages persisted key-value settings
type ConfigService struct {
	store ports.ConfigStore
}

// NewConfigService creates a new ConfigService
func NewConfigService(store ports.ConfigStore) *ConfigService {
	return &ConfigService{store: store}
}

// Get returns the value stored under key
func (s *ConfigService) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("config key is empty: %w", domain.ErrInvalid)
	}
	return s.store.GetConfig(ctx, key)
}

// Set stores value under key, overwriting any previous value
func (s *ConfigService) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("config key is empty: %w", domain.ErrInvalid)
	}
	return s.store.SetConfig(ctx, key, value)
}

// Delete removes key
func (s *ConfigService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("config key is empty: %w", domain.ErrInvalid)
	}
	return s.store.DeleteConfig(ctx, key)
}

// List returns all stored key-value pairs
func (s *ConfigService) List(ctx context.Context) (map[string]string, error) {
	return s.store.ListConfig(ctx)
}
