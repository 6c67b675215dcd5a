package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/okarabulut/xtivi/internal/models"
)

// historyRepository implements HistoryRepository using GORM.
type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a HistoryRepository.
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Upsert(ctx context.Context, entry *models.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validating history entry: %w", err)
	}
	if entry.LastWatchedAt.IsZero() {
		entry.LastWatchedAt = time.Now()
	}

	var existing models.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND stream_id = ?", entry.UserID, entry.Kind, entry.StreamID).
		First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return r.db.WithContext(ctx).Create(entry).Error
		}
		return err
	}

	entry.ID = existing.ID
	entry.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *historyRepository) GetByUser(ctx context.Context, userID models.ULID, limit int) ([]*models.HistoryEntry, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_watched_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []*models.HistoryEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.HistoryEntry{}, "id = ?", id).Error
}

func (r *historyRepository) DeleteByUser(ctx context.Context, userID models.ULID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.HistoryEntry{}).Error
}
