// Package repository provides data access implementations over GORM.
//
// Lookups return (nil, nil) when no row matches; errors are reserved for
// storage failures.
package repository

import (
	"context"

	"github.com/okarabulut/xtivi/internal/models"
)

// UserRepository manages local users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id models.ULID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetOrCreate returns the user with the given username, creating it on
	// first sight.
	GetOrCreate(ctx context.Context, username, panelHost string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id models.ULID) error
}

// FavoriteRepository manages per-user favorites.
type FavoriteRepository interface {
	Create(ctx context.Context, favorite *models.Favorite) error
	GetByUser(ctx context.Context, userID models.ULID) ([]*models.Favorite, error)
	// Find returns the favorite for (user, kind, stream), or (nil, nil).
	Find(ctx context.Context, userID models.ULID, kind, streamID string) (*models.Favorite, error)
	Delete(ctx context.Context, id models.ULID) error
	DeleteByItem(ctx context.Context, userID models.ULID, kind, streamID string) error
}

// HistoryRepository manages per-user watch history.
type HistoryRepository interface {
	// Upsert inserts the entry or overwrites the existing row for the same
	// (user, kind, stream).
	Upsert(ctx context.Context, entry *models.HistoryEntry) error
	GetByUser(ctx context.Context, userID models.ULID, limit int) ([]*models.HistoryEntry, error)
	Delete(ctx context.Context, id models.ULID) error
	DeleteByUser(ctx context.Context, userID models.ULID) error
}

// SettingsRepository manages the single settings row per user.
type SettingsRepository interface {
	// Upsert inserts or replaces the user's settings row.
	Upsert(ctx context.Context, settings *models.Settings) error
	GetByUser(ctx context.Context, userID models.ULID) (*models.Settings, error)
}
