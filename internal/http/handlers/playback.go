package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/okarabulut/xtivi/internal/playback"
)

// PlaybackHandler drives the playback resolution and fallback engine.
type PlaybackHandler struct {
	controller *playback.Controller
	logger     *slog.Logger
}

// NewPlaybackHandler creates a playback handler around a controller.
func NewPlaybackHandler(controller *playback.Controller, logger *slog.Logger) *PlaybackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybackHandler{controller: controller, logger: logger}
}

// Register registers the playback routes.
func (h *PlaybackHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "resolvePlayback",
		Method:      "POST",
		Path:        "/api/v1/playback/resolve",
		Summary:     "Resolve stream URLs",
		Description: "Classifies a catalog item and derives its primary URL and ordered fallback alternatives without touching the network",
		Tags:        []string{"Playback"},
	}, h.Resolve)

	huma.Register(api, huma.Operation{
		OperationID: "startPlayback",
		Method:      "POST",
		Path:        "/api/v1/playback/play",
		Summary:     "Start playback",
		Description: "Starts the fallback cascade for a catalog item; progress is observable via the session endpoint",
		Tags:        []string{"Playback"},
	}, h.Play)

	huma.Register(api, huma.Operation{
		OperationID: "cancelPlayback",
		Method:      "POST",
		Path:        "/api/v1/playback/cancel",
		Summary:     "Cancel playback",
		Description: "Cancels the active playback session",
		Tags:        []string{"Playback"},
	}, h.Cancel)

	huma.Register(api, huma.Operation{
		OperationID: "getPlaybackSession",
		Method:      "GET",
		Path:        "/api/v1/playback/session",
		Summary:     "Get playback session",
		Description: "Returns a snapshot of the active playback session",
		Tags:        []string{"Playback"},
	}, h.Session)
}

// PlaybackItemRequest is a catalog item in a playback request.
type PlaybackItemRequest struct {
	StreamID           string `json:"stream_id,omitempty"`
	SeriesID           string `json:"series_id,omitempty"`
	EpisodeID          string `json:"episode_id,omitempty"`
	DeclaredType       string `json:"declared_type,omitempty" enum:"live,vod,series,"`
	CategoryName       string `json:"category_name,omitempty"`
	Name               string `json:"name,omitempty"`
	ContainerExtension string `json:"container_extension,omitempty"`
	SeasonNumber       *int   `json:"season_number,omitempty"`
	EpisodeNumber      *int   `json:"episode_number,omitempty"`
}

func (r PlaybackItemRequest) toItem() playback.CatalogItem {
	return playback.CatalogItem{
		StreamID:           r.StreamID,
		SeriesID:           r.SeriesID,
		EpisodeID:          r.EpisodeID,
		DeclaredType:       playback.ContentKind(r.DeclaredType),
		CategoryName:       r.CategoryName,
		Name:               r.Name,
		ContainerExtension: r.ContainerExtension,
		SeasonNumber:       r.SeasonNumber,
		EpisodeNumber:      r.EpisodeNumber,
	}
}

// ResolveRequest is the request body for URL resolution.
type ResolveRequest struct {
	Credentials CredentialsRequest  `json:"credentials"`
	Item        PlaybackItemRequest `json:"item"`
	KindHint    string              `json:"kind_hint,omitempty" doc:"Overrides classification when set" enum:"live,vod,series,"`
}

// ResolveInput is the input for URL resolution.
type ResolveInput struct {
	Body ResolveRequest
}

// ResolveOutput is the output for URL resolution.
type ResolveOutput struct {
	Body struct {
		Kind         string   `json:"kind"`
		Primary      string   `json:"primary"`
		Alternatives []string `json:"alternatives"`
	}
}

// Resolve classifies the item and derives its URL set.
func (h *PlaybackHandler) Resolve(ctx context.Context, input *ResolveInput) (*ResolveOutput, error) {
	item := input.Body.Item.toItem()
	creds := input.Body.Credentials.toCredentials()
	kind := playback.Classify(item, playback.ContentKind(input.Body.KindHint))

	set, err := playback.Resolve(item, kind, creds)
	if err != nil {
		switch {
		case errors.Is(err, playback.ErrEpisodeSelectionRequired):
			return nil, huma.Error409Conflict("episode selection required", err)
		case errors.Is(err, playback.ErrInvalidCredentials):
			return nil, huma.Error400BadRequest("missing panel credentials", err)
		default:
			return nil, huma.Error400BadRequest("unresolvable item", err)
		}
	}

	resp := &ResolveOutput{}
	resp.Body.Kind = string(kind)
	resp.Body.Primary = set.Primary
	resp.Body.Alternatives = set.Alternatives
	return resp, nil
}

// PlayRequest is the request body for starting playback.
type PlayRequest struct {
	Credentials CredentialsRequest  `json:"credentials"`
	Item        PlaybackItemRequest `json:"item"`
	KindHint    string              `json:"kind_hint,omitempty" enum:"live,vod,series,"`
}

// PlayInput is the input for starting playback.
type PlayInput struct {
	Body PlayRequest
}

// PlayOutput is the output for starting playback.
type PlayOutput struct {
	Body playback.Session
}

// Play starts the fallback cascade. The cascade runs in the background;
// this returns the initial session snapshot and a superseded session is
// canceled by construction.
func (h *PlaybackHandler) Play(ctx context.Context, input *PlayInput) (*PlayOutput, error) {
	item := input.Body.Item.toItem()
	creds := input.Body.Credentials.toCredentials()
	if err := creds.Validate(); err != nil {
		return nil, huma.Error400BadRequest("missing panel credentials", err)
	}

	hint := playback.ContentKind(input.Body.KindHint)
	kind := playback.Classify(item, hint)
	if playback.NeedsEpisodeSelection(item, kind) {
		return nil, huma.Error409Conflict("episode selection required")
	}
	if _, err := playback.ResolvePrimary(item, kind, creds); err != nil {
		return nil, huma.Error400BadRequest("unresolvable item", err)
	}

	// The request context dies with this response; the cascade outlives it.
	go func() {
		outcome, err := h.controller.Play(context.Background(), item, creds, hint)
		if err != nil {
			h.logger.Error("playback failed to start", slog.String("error", err.Error()))
			return
		}
		h.logger.Info("playback finished",
			slog.String("status", string(outcome.Status)),
			slog.Int("attempts", outcome.Attempts),
		)
	}()

	return &PlayOutput{Body: h.controller.Session()}, nil
}

// CancelInput is the input for canceling playback.
type CancelInput struct{}

// CancelOutput is the output for canceling playback.
type CancelOutput struct {
	Body playback.Session
}

// Cancel cancels the active session.
func (h *PlaybackHandler) Cancel(ctx context.Context, input *CancelInput) (*CancelOutput, error) {
	h.controller.Cancel()
	return &CancelOutput{Body: h.controller.Session()}, nil
}

// SessionInput is the input for the session endpoint.
type SessionInput struct{}

// SessionOutput is the output for the session endpoint.
type SessionOutput struct {
	Body playback.Session
}

// Session returns the active session snapshot.
func (h *PlaybackHandler) Session(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	return &SessionOutput{Body: h.controller.Session()}, nil
}
