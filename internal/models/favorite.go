package models

import "errors"

// Validation errors for favorites and history.
var (
	ErrUserIDRequired   = errors.New("user id is required")
	ErrStreamIDRequired = errors.New("stream id is required")
	ErrInvalidKind      = errors.New("kind must be live, vod, or series")
)

// ValidKind reports whether kind is one of the catalog kinds.
func ValidKind(kind string) bool {
	switch kind {
	case "live", "vod", "series":
		return true
	default:
		return false
	}
}

// Favorite marks one catalog item as a favorite of a user. An item is
// identified by its kind plus the panel's stream id; display fields are
// denormalized so the favorites list renders without a catalog fetch.
type Favorite struct {
	BaseModel
	UserID   ULID   `gorm:"uniqueIndex:idx_favorites_user_item;not null" json:"user_id"`
	Kind     string `gorm:"uniqueIndex:idx_favorites_user_item;not null" json:"kind"`
	StreamID string `gorm:"uniqueIndex:idx_favorites_user_item;not null" json:"stream_id"`

	Name         string `json:"name"`
	Icon         string `json:"icon"`
	CategoryName string `json:"category_name"`
}

// Validate checks the favorite is storable.
func (f *Favorite) Validate() error {
	if f.UserID.IsZero() {
		return ErrUserIDRequired
	}
	if f.StreamID == "" {
		return ErrStreamIDRequired
	}
	if !ValidKind(f.Kind) {
		return ErrInvalidKind
	}
	return nil
}
