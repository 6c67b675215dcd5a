package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/okarabulut/xtivi/internal/catalog"
	"github.com/okarabulut/xtivi/internal/playback"
)

// CatalogHandler serves the panel catalog listings.
type CatalogHandler struct {
	catalog *catalog.Service
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService}
}

// Register registers the catalog routes.
func (h *CatalogHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listCategories",
		Method:      "GET",
		Path:        "/api/v1/catalog/{kind}/categories",
		Summary:     "List categories",
		Description: "Returns the categories of one catalog kind (live, vod, or series)",
		Tags:        []string{"Catalog"},
	}, h.Categories)

	huma.Register(api, huma.Operation{
		OperationID: "listStreams",
		Method:      "GET",
		Path:        "/api/v1/catalog/{kind}/streams",
		Summary:     "List streams",
		Description: "Returns the items of one catalog kind, optionally filtered by category",
		Tags:        []string{"Catalog"},
	}, h.Streams)

	huma.Register(api, huma.Operation{
		OperationID: "getSeriesDetail",
		Method:      "GET",
		Path:        "/api/v1/catalog/series/{seriesId}",
		Summary:     "Get series detail",
		Description: "Returns the season and episode enumeration for one series",
		Tags:        []string{"Catalog"},
	}, h.SeriesDetail)

	huma.Register(api, huma.Operation{
		OperationID: "getShortEPG",
		Method:      "GET",
		Path:        "/api/v1/catalog/live/{streamId}/epg",
		Summary:     "Get short EPG",
		Description: "Returns the upcoming programs for one live channel",
		Tags:        []string{"Catalog"},
	}, h.ShortEPG)
}

// CategoryResponse is one catalog category.
type CategoryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id,omitempty"`
}

// ListCategoriesInput is the input for listing categories.
type ListCategoriesInput struct {
	Kind string `path:"kind" doc:"Catalog kind" enum:"live,vod,series"`
	CredentialsQuery
}

// ListCategoriesOutput is the output for listing categories.
type ListCategoriesOutput struct {
	Body struct {
		Categories []CategoryResponse `json:"categories"`
		Count      int                `json:"count"`
	}
}

// Categories lists the categories of one catalog kind.
func (h *CatalogHandler) Categories(ctx context.Context, input *ListCategoriesInput) (*ListCategoriesOutput, error) {
	categories, err := h.catalog.Categories(ctx, input.toCredentials(), input.Kind)
	if err != nil {
		return nil, catalogError(err)
	}

	resp := &ListCategoriesOutput{}
	resp.Body.Categories = make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp.Body.Categories = append(resp.Body.Categories, CategoryResponse{
			ID:       c.CategoryID.String(),
			Name:     c.CategoryName,
			ParentID: c.ParentID.Int(),
		})
	}
	resp.Body.Count = len(categories)

	return resp, nil
}

// ListStreamsInput is the input for listing streams.
type ListStreamsInput struct {
	Kind       string `path:"kind" doc:"Catalog kind" enum:"live,vod,series"`
	CategoryID string `query:"category_id" doc:"Restrict to one category" required:"false"`
	CredentialsQuery
}

// ListStreamsOutput is the output for listing streams.
type ListStreamsOutput struct {
	Body struct {
		Streams []catalog.Entry `json:"streams"`
		Count   int             `json:"count"`
	}
}

// Streams lists the items of one catalog kind.
func (h *CatalogHandler) Streams(ctx context.Context, input *ListStreamsInput) (*ListStreamsOutput, error) {
	entries, err := h.catalog.Streams(ctx, input.toCredentials(), input.Kind, input.CategoryID)
	if err != nil {
		return nil, catalogError(err)
	}

	resp := &ListStreamsOutput{}
	resp.Body.Streams = entries
	resp.Body.Count = len(entries)
	return resp, nil
}

// SeriesDetailInput is the input for the series detail endpoint.
type SeriesDetailInput struct {
	SeriesID string `path:"seriesId" doc:"Series ID"`
	CredentialsQuery
}

// SeriesDetailOutput is the output for the series detail endpoint.
type SeriesDetailOutput struct {
	Body catalog.SeriesDetail
}

// SeriesDetail enumerates the seasons and episodes of one series.
func (h *CatalogHandler) SeriesDetail(ctx context.Context, input *SeriesDetailInput) (*SeriesDetailOutput, error) {
	detail, err := h.catalog.SeriesDetail(ctx, input.toCredentials(), input.SeriesID)
	if err != nil {
		return nil, catalogError(err)
	}
	return &SeriesDetailOutput{Body: *detail}, nil
}

// EPGEntryResponse is one EPG program.
type EPGEntryResponse struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	NowPlaying  bool   `json:"now_playing"`
}

// ShortEPGInput is the input for the short EPG endpoint.
type ShortEPGInput struct {
	StreamID string `path:"streamId" doc:"Live stream ID"`
	Limit    string `query:"limit" doc:"Maximum number of programs" required:"false"`
	CredentialsQuery
}

// ShortEPGOutput is the output for the short EPG endpoint.
type ShortEPGOutput struct {
	Body struct {
		Listings []EPGEntryResponse `json:"listings"`
	}
}

// ShortEPG returns the upcoming programs of one live channel.
func (h *CatalogHandler) ShortEPG(ctx context.Context, input *ShortEPGInput) (*ShortEPGOutput, error) {
	limit := 0
	if input.Limit != "" {
		n, err := strconv.Atoi(input.Limit)
		if err != nil || n < 0 {
			return nil, huma.Error400BadRequest("invalid limit")
		}
		limit = n
	}

	listings, err := h.catalog.ShortEPG(ctx, input.toCredentials(), input.StreamID, limit)
	if err != nil {
		return nil, catalogError(err)
	}

	resp := &ShortEPGOutput{}
	resp.Body.Listings = make([]EPGEntryResponse, 0, len(listings))
	for i := range listings {
		entry := &listings[i]
		out := EPGEntryResponse{
			Title:       entry.Title,
			Description: entry.Description,
			NowPlaying:  entry.NowPlaying.Int() == 1,
		}
		if t := entry.StartTime(); !t.IsZero() {
			out.Start = t.UTC().Format(timeFormat)
		}
		if t := entry.EndTime(); !t.IsZero() {
			out.End = t.UTC().Format(timeFormat)
		}
		resp.Body.Listings = append(resp.Body.Listings, out)
	}

	return resp, nil
}

// catalogError maps service errors to API errors: credential problems are
// the caller's fault, everything else means the panel is unreachable.
func catalogError(err error) error {
	if errors.Is(err, playback.ErrInvalidCredentials) {
		return huma.Error400BadRequest("missing panel credentials", err)
	}
	return huma.Error502BadGateway("panel request failed", err)
}
