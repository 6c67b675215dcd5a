// Package handlers provides the HTTP API handlers for xtivi.
package handlers

import (
	"github.com/okarabulut/xtivi/internal/playback"
)

// CredentialsRequest carries panel credentials in a request body. They
// live in the browser session and arrive per-request; nothing persists
// them.
type CredentialsRequest struct {
	Host     string `json:"host" doc:"Panel base URL" minLength:"1"`
	Username string `json:"username" doc:"Panel username" minLength:"1"`
	Password string `json:"password" doc:"Panel password" minLength:"1"`
}

func (c CredentialsRequest) toCredentials() playback.Credentials {
	return playback.Credentials{
		Host:     c.Host,
		Username: c.Username,
		Password: c.Password,
	}
}

// CredentialsQuery carries panel credentials as query parameters on GET
// endpoints.
type CredentialsQuery struct {
	Host     string `query:"host" doc:"Panel base URL" required:"true"`
	Username string `query:"username" doc:"Panel username" required:"true"`
	Password string `query:"password" doc:"Panel password" required:"true"`
}

func (c CredentialsQuery) toCredentials() playback.Credentials {
	return playback.Credentials{
		Host:     c.Host,
		Username: c.Username,
		Password: c.Password,
	}
}

const timeFormat = "2006-01-02T15:04:05Z07:00"
