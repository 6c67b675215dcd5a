package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/okarabulut/xtivi/internal/models"
	"github.com/okarabulut/xtivi/internal/repository"
)

// SettingsHandler handles the per-user settings endpoints.
type SettingsHandler struct {
	repo repository.SettingsRepository
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(repo repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{repo: repo}
}

// Register registers the settings routes.
func (h *SettingsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getSettings",
		Method:      "GET",
		Path:        "/api/v1/settings",
		Summary:     "Get settings",
		Description: "Returns the user's settings; empty settings for a user without a stored row",
		Tags:        []string{"Settings"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "saveSettings",
		Method:      "POST",
		Path:        "/api/v1/settings",
		Summary:     "Save settings",
		Description: "Creates or updates the user's settings row",
		Tags:        []string{"Settings"},
	}, h.Save)
}

// SettingsResponse is the settings payload.
type SettingsResponse struct {
	UserID string `json:"user_id"`
	Player string `json:"player,omitempty" doc:"JSON blob with playback preferences"`
	UI     string `json:"ui,omitempty" doc:"JSON blob with interface preferences"`
}

// GetSettingsInput is the input for fetching settings.
type GetSettingsInput struct {
	UserID string `query:"user_id" doc:"User ID (ULID)" required:"true"`
}

// GetSettingsOutput is the output for fetching settings.
type GetSettingsOutput struct {
	Body SettingsResponse
}

// Get returns the user's settings.
func (h *SettingsHandler) Get(ctx context.Context, input *GetSettingsInput) (*GetSettingsOutput, error) {
	userID, err := models.ParseULID(input.UserID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user_id format", err)
	}

	settings, err := h.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get settings", err)
	}

	resp := &GetSettingsOutput{}
	resp.Body.UserID = input.UserID
	if settings != nil {
		resp.Body.Player = settings.Player
		resp.Body.UI = settings.UI
	}
	return resp, nil
}

// SaveSettingsRequest is the request body for saving settings.
type SaveSettingsRequest struct {
	UserID string `json:"user_id" doc:"User ID (ULID)" minLength:"1"`
	Player string `json:"player,omitempty"`
	UI     string `json:"ui,omitempty"`
}

// SaveSettingsInput is the input for saving settings.
type SaveSettingsInput struct {
	Body SaveSettingsRequest
}

// SaveSettingsOutput is the output for saving settings.
type SaveSettingsOutput struct {
	Body SettingsResponse
}

// Save creates or updates the user's settings.
func (h *SettingsHandler) Save(ctx context.Context, input *SaveSettingsInput) (*SaveSettingsOutput, error) {
	userID, err := models.ParseULID(input.Body.UserID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user_id format", err)
	}

	settings := &models.Settings{
		UserID: userID,
		Player: input.Body.Player,
		UI:     input.Body.UI,
	}
	if err := h.repo.Upsert(ctx, settings); err != nil {
		return nil, huma.Error500InternalServerError("failed to save settings", err)
	}

	return &SaveSettingsOutput{Body: SettingsResponse{
		UserID: input.Body.UserID,
		Player: settings.Player,
		UI:     settings.UI,
	}}, nil
}
