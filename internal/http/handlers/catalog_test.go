package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okarabulut/xtivi/internal/catalog"
)

// newCatalogTestPanel serves the player_api.php actions the catalog
// handler exercises.
func newCatalogTestPanel(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("action") {
		case "get_live_categories":
			w.Write([]byte(`[{"category_id":"1","category_name":"Haberler"},{"category_id":"2","category_name":"Spor"}]`))
		case "get_vod_streams":
			w.Write([]byte(`[{"name":"Some Movie","stream_id":201,"container_extension":"mkv","category_id":"2"},{"name":"Another Movie","stream_id":202,"category_id":"2"}]`))
		case "get_series_info":
			w.Write([]byte(`{"info":{"name":"A Show","plot":"About things"},"seasons":[{"season_number":1,"name":"Season 1"}],"episodes":{"1":[{"id":"9001","title":"Pilot","episode_num":1,"season":1,"container_extension":"mp4"}]}}`))
		case "get_short_epg":
			w.Write([]byte(`{"epg_listings":[{"id":"1","title":"Evening News","start_timestamp":"1700000000","stop_timestamp":"1700003600","now_playing":"1"}]}`))
		default:
			http.Error(w, "unexpected action", http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newCatalogTestHandler(t *testing.T, panelURL string) (*CatalogHandler, CredentialsQuery) {
	t.Helper()
	service := catalog.NewService(http.DefaultClient, time.Minute, "", slog.New(slog.DiscardHandler))
	creds := CredentialsQuery{Host: panelURL, Username: "alice", Password: "pass"}
	return NewCatalogHandler(service), creds
}

func TestCatalogHandler_Categories(t *testing.T) {
	panel := newCatalogTestPanel(t)
	handler, creds := newCatalogTestHandler(t, panel.URL)

	output, err := handler.Categories(context.Background(), &ListCategoriesInput{
		Kind:             "live",
		CredentialsQuery: creds,
	})
	require.NoError(t, err)

	require.Equal(t, 2, output.Body.Count)
	assert.Equal(t, "1", output.Body.Categories[0].ID)
	assert.Equal(t, "Haberler", output.Body.Categories[0].Name)
	assert.Equal(t, "Spor", output.Body.Categories[1].Name)
}

func TestCatalogHandler_Streams(t *testing.T) {
	panel := newCatalogTestPanel(t)
	handler, creds := newCatalogTestHandler(t, panel.URL)

	output, err := handler.Streams(context.Background(), &ListStreamsInput{
		Kind:             "vod",
		CategoryID:       "2",
		CredentialsQuery: creds,
	})
	require.NoError(t, err)

	require.Equal(t, 2, output.Body.Count)
	assert.Equal(t, "Some Movie", output.Body.Streams[0].Name)
	assert.Equal(t, "mkv", output.Body.Streams[0].ContainerExtension)
	assert.Equal(t, "vod", output.Body.Streams[0].Kind)
}

func TestCatalogHandler_SeriesDetail(t *testing.T) {
	panel := newCatalogTestPanel(t)
	handler, creds := newCatalogTestHandler(t, panel.URL)

	output, err := handler.SeriesDetail(context.Background(), &SeriesDetailInput{
		SeriesID:         "400",
		CredentialsQuery: creds,
	})
	require.NoError(t, err)

	assert.Equal(t, "A Show", output.Body.Name)
	require.Len(t, output.Body.Episodes, 1)
	assert.Equal(t, "9001", output.Body.Episodes[0].EpisodeID)
	assert.Equal(t, 1, output.Body.Episodes[0].SeasonNumber)
}

func TestCatalogHandler_ShortEPG(t *testing.T) {
	panel := newCatalogTestPanel(t)
	handler, creds := newCatalogTestHandler(t, panel.URL)

	output, err := handler.ShortEPG(context.Background(), &ShortEPGInput{
		StreamID:         "101",
		CredentialsQuery: creds,
	})
	require.NoError(t, err)

	require.Len(t, output.Body.Listings, 1)
	assert.Equal(t, "Evening News", output.Body.Listings[0].Title)
	assert.True(t, output.Body.Listings[0].NowPlaying)
	assert.NotEmpty(t, output.Body.Listings[0].Start)
}

func TestCatalogHandler_ShortEPG_InvalidLimit(t *testing.T) {
	panel := newCatalogTestPanel(t)
	handler, creds := newCatalogTestHandler(t, panel.URL)

	_, err := handler.ShortEPG(context.Background(), &ShortEPGInput{
		StreamID:         "101",
		Limit:            "lots",
		CredentialsQuery: creds,
	})
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.GetStatus())
}

func TestCatalogHandler_MissingCredentials(t *testing.T) {
	panel := newCatalogTestPanel(t)
	handler, _ := newCatalogTestHandler(t, panel.URL)

	_, err := handler.Categories(context.Background(), &ListCategoriesInput{
		Kind:             "live",
		CredentialsQuery: CredentialsQuery{Host: panel.URL},
	})
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.GetStatus())
}

func TestCatalogHandler_PanelUnreachable(t *testing.T) {
	handler, _ := newCatalogTestHandler(t, "http://127.0.0.1:1")

	_, err := handler.Streams(context.Background(), &ListStreamsInput{
		Kind:             "live",
		CredentialsQuery: CredentialsQuery{Host: "http://127.0.0.1:1", Username: "alice", Password: "pass"},
	})
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.GetStatus())
}
