package models

import "time"

// HistoryEntry records the last watch of one item by one user. A re-watch
// overwrites the existing row rather than appending; position tracking is
// best-effort only.
type HistoryEntry struct {
	BaseModel
	UserID   ULID   `gorm:"uniqueIndex:idx_history_user_item;not null" json:"user_id"`
	Kind     string `gorm:"uniqueIndex:idx_history_user_item;not null" json:"kind"`
	StreamID string `gorm:"uniqueIndex:idx_history_user_item;not null" json:"stream_id"`

	Name          string    `json:"name"`
	Icon          string    `json:"icon"`
	LastWatchedAt time.Time `json:"last_watched_at"`
	// WatchDuration is how long the item was watched, in seconds.
	WatchDuration int `json:"watch_duration"`
	// ProgressSeconds is the playback position at the time of the update.
	ProgressSeconds int `json:"progress_seconds"`
	// Metadata carries item extras as a JSON blob, e.g. season and episode
	// numbers for series entries.
	Metadata string `gorm:"type:text" json:"metadata,omitempty"`
}

// Validate checks the entry is storable.
func (h *HistoryEntry) Validate() error {
	if h.UserID.IsZero() {
		return ErrUserIDRequired
	}
	if h.StreamID == "" {
		return ErrStreamIDRequired
	}
	if !ValidKind(h.Kind) {
		return ErrInvalidKind
	}
	return nil
}
