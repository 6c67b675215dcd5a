package handlers

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/okarabulut/xtivi/internal/models"
	"github.com/okarabulut/xtivi/internal/repository"
)

// FavoriteHandler handles the favorites endpoints.
type FavoriteHandler struct {
	repo repository.FavoriteRepository
}

// NewFavoriteHandler creates a favorite handler.
func NewFavoriteHandler(repo repository.FavoriteRepository) *FavoriteHandler {
	return &FavoriteHandler{repo: repo}
}

// Register registers the favorites routes.
func (h *FavoriteHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listFavorites",
		Method:      "GET",
		Path:        "/api/v1/favorites",
		Summary:     "List favorites",
		Description: "Returns the user's favorites, newest first",
		Tags:        []string{"Favorites"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "addFavorite",
		Method:      "POST",
		Path:        "/api/v1/favorites",
		Summary:     "Add favorite",
		Tags:        []string{"Favorites"},
	}, h.Add)

	huma.Register(api, huma.Operation{
		OperationID: "removeFavorite",
		Method:      "DELETE",
		Path:        "/api/v1/favorites",
		Summary:     "Remove favorite",
		Description: "Removes the favorite identified by (user, kind, stream)",
		Tags:        []string{"Favorites"},
	}, h.Remove)

	huma.Register(api, huma.Operation{
		OperationID: "checkFavorite",
		Method:      "GET",
		Path:        "/api/v1/favorites/check",
		Summary:     "Check favorite",
		Description: "Reports whether an item is among the user's favorites",
		Tags:        []string{"Favorites"},
	}, h.Check)
}

// FavoriteResponse is one favorite in API responses.
type FavoriteResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Kind         string `json:"kind"`
	StreamID     string `json:"stream_id"`
	Name         string `json:"name"`
	Icon         string `json:"icon,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func favoriteFromModel(f *models.Favorite) FavoriteResponse {
	return FavoriteResponse{
		ID:           f.ID.String(),
		UserID:       f.UserID.String(),
		Kind:         f.Kind,
		StreamID:     f.StreamID,
		Name:         f.Name,
		Icon:         f.Icon,
		CategoryName: f.CategoryName,
		CreatedAt:    f.CreatedAt.Format(timeFormat),
	}
}

// ListFavoritesInput is the input for listing favorites.
type ListFavoritesInput struct {
	UserID string `query:"user_id" doc:"User ID (ULID)" required:"true"`
}

// ListFavoritesOutput is the output for listing favorites.
type ListFavoritesOutput struct {
	Body struct {
		Favorites []FavoriteResponse `json:"favorites"`
		Count     int                `json:"count"`
	}
}

// List returns the user's favorites.
func (h *FavoriteHandler) List(ctx context.Context, input *ListFavoritesInput) (*ListFavoritesOutput, error) {
	userID, err := models.ParseULID(input.UserID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user_id format", err)
	}

	favorites, err := h.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list favorites", err)
	}

	resp := &ListFavoritesOutput{}
	resp.Body.Favorites = make([]FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		resp.Body.Favorites = append(resp.Body.Favorites, favoriteFromModel(f))
	}
	resp.Body.Count = len(favorites)

	return resp, nil
}

// AddFavoriteRequest is the request body for adding a favorite.
type AddFavoriteRequest struct {
	UserID       string `json:"user_id" doc:"User ID (ULID)" minLength:"1"`
	Kind         string `json:"kind" enum:"live,vod,series"`
	StreamID     string `json:"stream_id" minLength:"1"`
	Name         string `json:"name,omitempty"`
	Icon         string `json:"icon,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

// AddFavoriteInput is the input for adding a favorite.
type AddFavoriteInput struct {
	Body AddFavoriteRequest
}

// AddFavoriteOutput is the output for adding a favorite.
type AddFavoriteOutput struct {
	Body FavoriteResponse
}

// Add stores a favorite. Adding an already-favorited item returns the
// existing row.
func (h *FavoriteHandler) Add(ctx context.Context, input *AddFavoriteInput) (*AddFavoriteOutput, error) {
	userID, err := models.ParseULID(input.Body.UserID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user_id format", err)
	}

	existing, err := h.repo.Find(ctx, userID, input.Body.Kind, input.Body.StreamID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to check favorite", err)
	}
	if existing != nil {
		return &AddFavoriteOutput{Body: favoriteFromModel(existing)}, nil
	}

	favorite := &models.Favorite{
		UserID:       userID,
		Kind:         input.Body.Kind,
		StreamID:     input.Body.StreamID,
		Name:         input.Body.Name,
		Icon:         input.Body.Icon,
		CategoryName: input.Body.CategoryName,
	}
	if err := h.repo.Create(ctx, favorite); err != nil {
		return nil, huma.Error500InternalServerError("failed to add favorite", err)
	}

	return &AddFavoriteOutput{Body: favoriteFromModel(favorite)}, nil
}

// RemoveFavoriteInput is the input for removing a favorite.
type RemoveFavoriteInput struct {
	UserID   string `query:"user_id" doc:"User ID (ULID)" required:"true"`
	Kind     string `query:"kind" enum:"live,vod,series" required:"true"`
	StreamID string `query:"stream_id" required:"true"`
}

// RemoveFavoriteOutput is the output for removing a favorite.
type RemoveFavoriteOutput struct {
	Body struct {
		Removed bool `json:"removed"`
	}
}

// Remove deletes the favorite for (user, kind, stream).
func (h *FavoriteHandler) Remove(ctx context.Context, input *RemoveFavoriteInput) (*RemoveFavoriteOutput, error) {
	userID, err := models.ParseULID(input.UserID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user_id format", err)
	}

	existing, err := h.repo.Find(ctx, userID, input.Kind, input.StreamID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to check favorite", err)
	}
	if existing == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("favorite %s/%s not found", input.Kind, input.StreamID))
	}

	if err := h.repo.DeleteByItem(ctx, userID, input.Kind, input.StreamID); err != nil {
		return nil, huma.Error500InternalServerError("failed to remove favorite", err)
	}

	resp := &RemoveFavoriteOutput{}
	resp.Body.Removed = true
	return resp, nil
}

// CheckFavoriteInput is the input for the favorite check endpoint.
type CheckFavoriteInput struct {
	UserID   string `query:"user_id" doc:"User ID (ULID)" required:"true"`
	Kind     string `query:"kind" enum:"live,vod,series" required:"true"`
	StreamID string `query:"stream_id" required:"true"`
}

// CheckFavoriteOutput is the output for the favorite check endpoint.
type CheckFavoriteOutput struct {
	Body struct {
		IsFavorite bool `json:"is_favorite"`
	}
}

// Check reports whether the item is favorited.
func (h *FavoriteHandler) Check(ctx context.Context, input *CheckFavoriteInput) (*CheckFavoriteOutput, error) {
	userID, err := models.ParseULID(input.UserID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid user_id format", err)
	}

	existing, err := h.repo.Find(ctx, userID, input.Kind, input.StreamID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to check favorite", err)
	}

	resp := &CheckFavoriteOutput{}
	resp.Body.IsFavorite = existing != nil
	return resp, nil
}
