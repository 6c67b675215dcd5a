package models

// Settings holds one user's preferences as opaque JSON blobs. The backend
// stores and returns them verbatim; their schema belongs to the UI.
type Settings struct {
	BaseModel
	UserID ULID `gorm:"uniqueIndex;not null" json:"user_id"`

	// Player holds playback preferences (volume, preferred container,
	// autoplay).
	Player string `gorm:"type:text" json:"player,omitempty"`
	// UI holds interface preferences (theme, layout, language).
	UI string `gorm:"type:text" json:"ui,omitempty"`
}

// Validate checks the settings row is storable.
func (s *Settings) Validate() error {
	if s.UserID.IsZero() {
		return ErrUserIDRequired
	}
	return nil
}
