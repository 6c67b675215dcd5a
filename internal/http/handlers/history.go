package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/okarabulut/xtivi/internal/models"
	"github.com/okarabulut/xtivi/internal/repository"
)

// HistoryHandler handles the watch history endpoints.
type HistoryHandler struct {
	repo repository.HistoryRepository
}

// NewHistoryHandler creates a history handler.
func NewHistoryHandler(repo repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// Register registers the history routes.
func (h *HistoryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listHistory",
		Method:      "GET",
		Path:        "/api/v1/history",
		Summary:     "List watch history",
		Description: "Returns the user's watch history, most recently watched first",
		Tags:        []string{"History"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "recordHistory",
		Method:      "POST",
		Path:        "/api/v1/history",
		Summary:     "Record watch history",
		Description: "Adds or overwrites the history entry for (user, kind, stream)",
		Tags:        []string{"History"},
	}, h.Record)

	huma.Register(api, huma.Operation{
		OperationID: "clearHistory",
		Method:      "DELETE",
		Path:        "/api/v1/history",
		Summary:     "Clear watch history",
		Description: "Deletes all of the user's history entries",
		Tags:        []string{"History"},
	}, h.Clear)
}

// HistoryEntryResponse is one history entry in API responses.
type HistoryEntryResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	Kind            string `json:"kind"`
	StreamID        string `json:"stream_id"`
	Name            string `json:"name"`
	Icon            string `json:"icon,omitempty"`
	LastWatchedAt   string `json:"last_watched_at"`
	WatchDuration   int    `json:"watch_duration"`
	ProgressSeconds int    `json:"progress_seconds"`
	Metadata        string `json:"metadata,omitempty"`
}

func historyFromModel(e *models.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:              e.ID.String(),
		UserID:          e.UserID.String(),
		Kind:            e.Kind,
		StreamID:        e.StreamID,
		Name:            e.Name,
		Icon:            e.Icon,
		LastWatchedAt:   e.LastWatchedAt.Format(timeFormat),
		WatchDuration:   e.WatchDuration,
		ProgressSeconds: e.ProgressSeconds,
		Metadata:        e.Metadata,
	}
}

// ListHistoryInput is the input for listing history.
type ListHistoryInput struct {
	UserID string `query:"user_id" doc:"User ID (ULID)" required:"true"`
	Limit  int    `query:"limit" doc:"Maximum entries to return (0 for all)" required:"false" minimum:"0"`
}

// ListHistoryOutput is the output for listing history.
type ListHistoryOutput struct {
	Body struct {
		Entries []HistoryEntryResponse `json:"entries"`
		Count   int                    `json:"count"`
	}
}

// List returns the user's watch history.
func (h *HistoryHandler) List(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error) {
	userID, err := models.ParseULID(input.UserID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user_id format", err)
	}

	entries, err := h.repo.GetByUser(ctx, userID, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list history", err)
	}

	resp := &ListHistoryOutput{}
	resp.Body.Entries = make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp.Body.Entries = append(resp.Body.Entries, historyFromModel(e))
	}
	resp.Body.Count = len(entries)

	return resp, nil
}

// RecordHistoryRequest is the request body for recording history.
type RecordHistoryRequest struct {
	UserID          string `json:"user_id" doc:"User ID (ULID)" minLength:"1"`
	Kind            string `json:"kind" enum:"live,vod,series"`
	StreamID        string `json:"stream_id" minLength:"1"`
	Name            string `json:"name,omitempty"`
	Icon            string `json:"icon,omitempty"`
	WatchDuration   int    `json:"watch_duration,omitempty" minimum:"0"`
	ProgressSeconds int    `json:"progress_seconds,omitempty" minimum:"0"`
	Metadata        string `json:"metadata,omitempty" doc:"JSON blob with item extras, e.g. season and episode"`
}

// RecordHistoryInput is the input for recording history.
type RecordHistoryInput struct {
	Body RecordHistoryRequest
}

// RecordHistoryOutput is the output for recording history.
type RecordHistoryOutput struct {
	Body HistoryEntryResponse
}

// Record adds or overwrites the history entry for (user, kind, stream).
func (h *HistoryHandler) Record(ctx context.Context, input *RecordHistoryInput) (*RecordHistoryOutput, error) {
	userID, err := models.ParseULID(input.Body.UserID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user_id format", err)
	}

	entry := &models.HistoryEntry{
		UserID:          userID,
		Kind:            input.Body.Kind,
		StreamID:        input.Body.StreamID,
		Name:            input.Body.Name,
		Icon:            input.Body.Icon,
		LastWatchedAt:   time.Now(),
		WatchDuration:   input.Body.WatchDuration,
		ProgressSeconds: input.Body.ProgressSeconds,
		Metadata:        input.Body.Metadata,
	}
	if err := h.repo.Upsert(ctx, entry); err != nil {
		return nil, huma.Error500InternalServerError("failed to record history", err)
	}

	return &RecordHistoryOutput{Body: historyFromModel(entry)}, nil
}

// ClearHistoryInput is the input for clearing history.
type ClearHistoryInput struct {
	UserID string `query:"user_id" doc:"User ID (ULID)" required:"true"`
}

// ClearHistoryOutput is the output for clearing history.
type ClearHistoryOutput struct {
	Body struct {
		Cleared bool `json:"cleared"`
	}
}

// Clear deletes all of the user's history.
func (h *HistoryHandler) Clear(ctx context.Context, input *ClearHistoryInput) (*ClearHistoryOutput, error) {
	userID, err := models.ParseULID(input.UserID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user_id format", err)
	}

	if err := h.repo.DeleteByUser(ctx, userID); err != nil {
		return nil, huma.Error500InternalServerError("failed to clear history", err)
	}

	resp := &ClearHistoryOutput{}
	resp.Body.Cleared = true
	return resp, nil
}
