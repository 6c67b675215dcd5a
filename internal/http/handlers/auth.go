package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/okarabulut/xtivi/internal/catalog"
	"github.com/okarabulut/xtivi/internal/playback"
	"github.com/okarabulut/xtivi/internal/repository"
)

// AuthHandler validates panel credentials and registers the local user
// record.
type AuthHandler struct {
	catalog *catalog.Service
	users   repository.UserRepository
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(catalogService *catalog.Service, users repository.UserRepository) *AuthHandler {
	return &AuthHandler{catalog: catalogService, users: users}
}

// AuthenticateInput is the input for panel authentication.
type AuthenticateInput struct {
	Body CredentialsRequest
}

// AuthenticateResponse reports the panel's view of the account.
type AuthenticateResponse struct {
	Username       string `json:"username"`
	UserID         string `json:"user_id" doc:"Local user record ID (ULID)"`
	Status         string `json:"status"`
	ExpiresAt      string `json:"expires_at,omitempty"`
	IsTrial        bool   `json:"is_trial"`
	MaxConnections int64  `json:"max_connections"`
	ServerURL      string `json:"server_url,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
}

// AuthenticateOutput is the output for panel authentication.
type AuthenticateOutput struct {
	Body AuthenticateResponse
}

// Register registers the auth routes.
func (h *AuthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "authenticateXtream",
		Method:      "POST",
		Path:        "/api/v1/xtream/authenticate",
		Summary:     "Authenticate against a panel",
		Description: "Validates credentials against the panel and creates the local user record on first sight",
		Tags:        []string{"Auth"},
	}, h.Authenticate)
}

// Authenticate validates credentials against the panel.
func (h *AuthHandler) Authenticate(ctx context.Context, input *AuthenticateInput) (*AuthenticateOutput, error) {
	creds := input.Body.toCredentials()

	account, err := h.catalog.Authenticate(ctx, creds)
	if err != nil {
		if errors.Is(err, playback.ErrInvalidCredentials) {
			return nil, huma.Error400BadRequest("missing panel credentials", err)
		}
		return nil, huma.Error503ServiceUnavailable("panel unreachable", err)
	}

	if !account.UserInfo.IsAuthenticated() {
		return nil, huma.Error401Unauthorized("panel rejected credentials")
	}

	user, err := h.users.GetOrCreate(ctx, creds.Username, creds.Host)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to record user", err)
	}

	resp := AuthenticateResponse{
		Username:       account.UserInfo.Username,
		UserID:         user.ID.String(),
		Status:         account.UserInfo.Status,
		IsTrial:        account.UserInfo.IsTrial.Int() == 1,
		MaxConnections: account.UserInfo.MaxConnections.Int(),
		ServerURL:      account.ServerInfo.URL,
		Timezone:       account.ServerInfo.Timezone,
	}
	if exp := account.UserInfo.ExpirationTime(); !exp.IsZero() {
		resp.ExpiresAt = exp.UTC().Format(time.RFC3339)
	}

	return &AuthenticateOutput{Body: resp}, nil
}
