package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/okarabulut/xtivi/internal/models"
)

// favoriteRepository implements FavoriteRepository using GORM.
type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a FavoriteRepository.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *models.Favorite) error {
	if err := favorite.Validate(); err != nil {
		return fmt.Errorf("validating favorite: %w", err)
	}
	return r.db.WithContext(ctx).Create(favorite).Error
}

func (r *favoriteRepository) GetByUser(ctx context.Context, userID models.ULID) ([]*models.Favorite, error) {
	var favorites []*models.Favorite
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) Find(ctx context.Context, userID models.ULID, kind, streamID string) (*models.Favorite, error) {
	var favorite models.Favorite
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND stream_id = ?", userID, kind, streamID).
		First(&favorite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.Favorite{}, "id = ?", id).Error
}

func (r *favoriteRepository) DeleteByItem(ctx context.Context, userID models.ULID, kind, streamID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND stream_id = ?", userID, kind, streamID).
		Delete(&models.Favorite{}).Error
}
