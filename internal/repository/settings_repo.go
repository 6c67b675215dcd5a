package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/okarabulut/xtivi/internal/models"
)

// settingsRepository implements SettingsRepository using GORM.
type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a SettingsRepository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *models.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("validating settings: %w", err)
	}

	existing, err := r.GetByUser(ctx, settings.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Create(settings).Error
	}

	settings.ID = existing.ID
	settings.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(settings).Error
}

func (r *settingsRepository) GetByUser(ctx context.Context, userID models.ULID) (*models.Settings, error) {
	var settings models.Settings
	if err := r.db.WithContext(ctx).First(&settings, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}
