package models

import "errors"

// ErrUsernameRequired is returned when a user is created without a
// username.
var ErrUsernameRequired = errors.New("username is required")

// User is a local application user. The panel password itself never lands
// in the database; PanelHost records which panel the user last signed in
// against so the UI can prefill the login form.
type User struct {
	BaseModel
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `json:"display_name"`
	PanelHost   string `json:"panel_host"`
}

// Validate checks the user is storable.
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrUsernameRequired
	}
	return nil
}
