package xtream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://example.com:8080", "user", "pass")

	if client.BaseURL != "http://example.com:8080" {
		t.Errorf("expected BaseURL 'http://example.com:8080', got %q", client.BaseURL)
	}
	if client.Username != "user" {
		t.Errorf("expected Username 'user', got %q", client.Username)
	}
	if client.Password != "pass" {
		t.Errorf("expected Password 'pass', got %q", client.Password)
	}
	if client.HTTPClient == nil {
		t.Error("expected HTTPClient to be set")
	}
}

func TestNewClient_TrailingSlash(t *testing.T) {
	client := NewClient("http://example.com:8080/", "user", "pass")

	if client.BaseURL != "http://example.com:8080" {
		t.Errorf("expected trailing slash to be removed, got %q", client.BaseURL)
	}
}

func TestClient_Authenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/player_api.php" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("username") != "user" {
			t.Errorf("unexpected username: %s", r.URL.Query().Get("username"))
		}
		if r.URL.Query().Get("password") != "pass" {
			t.Errorf("unexpected password: %s", r.URL.Query().Get("password"))
		}
		if r.URL.Query().Get("action") != "" {
			t.Errorf("unexpected action: %s", r.URL.Query().Get("action"))
		}

		response := AccountInfo{
			UserInfo: UserInfo{
				Username:       "user",
				Status:         "Active",
				Auth:           1,
				ExpDate:        FlexInt(time.Now().Add(30 * 24 * time.Hour).Unix()),
				MaxConnections: 1,
			},
			ServerInfo: ServerInfo{
				URL:            "example.com",
				Port:           8080,
				ServerProtocol: "http",
				Timezone:       "UTC",
			},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	info, err := client.Authenticate(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.UserInfo.Username != "user" {
		t.Errorf("expected username 'user', got %q", info.UserInfo.Username)
	}
	if !info.UserInfo.IsAuthenticated() {
		t.Error("expected user to be authenticated")
	}
	if info.UserInfo.IsExpired() {
		t.Error("expected account not to be expired")
	}
	if info.ServerInfo.Port.Int() != 8080 {
		t.Errorf("expected port 8080, got %d", info.ServerInfo.Port.Int())
	}
}

func TestClient_Authenticate_BadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := AccountInfo{
			UserInfo: UserInfo{Auth: 0, Status: "Disabled"},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "wrong")
	info, err := client.Authenticate(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.UserInfo.IsAuthenticated() {
		t.Error("expected user not to be authenticated")
	}
}

func TestClient_LiveCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "get_live_categories" {
			t.Errorf("unexpected action: %s", r.URL.Query().Get("action"))
		}
		json.NewEncoder(w).Encode([]Category{
			{CategoryID: "1", CategoryName: "News"},
			{CategoryID: "2", CategoryName: "Sports"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	categories, err := client.LiveCategories(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].CategoryName != "News" {
		t.Errorf("expected 'News', got %q", categories[0].CategoryName)
	}
}

func TestClient_LiveStreams_CategoryFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "get_live_streams" {
			t.Errorf("unexpected action: %s", r.URL.Query().Get("action"))
		}
		if r.URL.Query().Get("category_id") != "42" {
			t.Errorf("unexpected category_id: %s", r.URL.Query().Get("category_id"))
		}
		json.NewEncoder(w).Encode([]LiveStream{
			{Name: "Channel One", StreamID: 100},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	streams, err := client.LiveStreams(context.Background(), &ListOptions{CategoryID: "42"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("expected 1 stream, got %d", len(streams))
	}
	if streams[0].StreamID.Int() != 100 {
		t.Errorf("expected stream ID 100, got %d", streams[0].StreamID.Int())
	}
}

func TestClient_VODItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "get_vod_streams" {
			t.Errorf("unexpected action: %s", r.URL.Query().Get("action"))
		}
		json.NewEncoder(w).Encode([]VODItem{
			{Name: "Some Movie", StreamID: 7, ContainerExtension: "mkv"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	items, err := client.VODItems(context.Background(), nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ContainerExtension != "mkv" {
		t.Errorf("expected container 'mkv', got %q", items[0].ContainerExtension)
	}
}

func TestClient_SeriesDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "get_series_info" {
			t.Errorf("unexpected action: %s", r.URL.Query().Get("action"))
		}
		if r.URL.Query().Get("series_id") != "55" {
			t.Errorf("unexpected series_id: %s", r.URL.Query().Get("series_id"))
		}
		json.NewEncoder(w).Encode(SeriesInfo{
			Info: SeriesDetails{Name: "Some Series"},
			Episodes: map[string][]Episode{
				"1": {
					{ID: "9001", EpisodeNum: 1, Title: "Pilot", Season: 1, ContainerExtension: "mp4"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	info, err := client.SeriesDetails(context.Background(), "55")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Info.Name != "Some Series" {
		t.Errorf("expected series name 'Some Series', got %q", info.Info.Name)
	}
	episodes := info.Episodes["1"]
	if len(episodes) != 1 {
		t.Fatalf("expected 1 episode in season 1, got %d", len(episodes))
	}
	if episodes[0].ID.String() != "9001" {
		t.Errorf("expected episode ID '9001', got %q", episodes[0].ID.String())
	}
}

func TestClient_ShortEPG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "get_short_epg" {
			t.Errorf("unexpected action: %s", r.URL.Query().Get("action"))
		}
		if r.URL.Query().Get("stream_id") != "100" {
			t.Errorf("unexpected stream_id: %s", r.URL.Query().Get("stream_id"))
		}
		if r.URL.Query().Get("limit") != "4" {
			t.Errorf("unexpected limit: %s", r.URL.Query().Get("limit"))
		}
		json.NewEncoder(w).Encode(epgResponse{
			EPGListings: []EPGEntry{
				{Title: "Evening News", StartTimestamp: 1700000000},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	entries, err := client.ShortEPG(context.Background(), "100", 4)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "Evening News" {
		t.Errorf("expected title 'Evening News', got %q", entries[0].Title)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass")
	_, err := client.Authenticate(context.Background())

	if err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestClient_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(AccountInfo{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass", WithUserAgent("xtivi/1.0"))
	if _, err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUA != "xtivi/1.0" {
		t.Errorf("expected User-Agent 'xtivi/1.0', got %q", gotUA)
	}
}

func TestClient_StreamURLs(t *testing.T) {
	client := NewClient("http://example.com:8080", "user", "pass")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"live with extension", client.LiveURL("1234", "m3u8"), "http://example.com:8080/live/user/pass/1234.m3u8"},
		{"live bare", client.LiveURL("1234", ""), "http://example.com:8080/live/user/pass/1234"},
		{"movie with extension", client.MovieURL("88", "mp4"), "http://example.com:8080/movie/user/pass/88.mp4"},
		{"movie bare", client.MovieURL("88", ""), "http://example.com:8080/movie/user/pass/88"},
		{"series with extension", client.SeriesURL("900", "mkv"), "http://example.com:8080/series/user/pass/900.mkv"},
		{"series composite id", client.SeriesURL("55_s1_e2", "mp4"), "http://example.com:8080/series/user/pass/55_s1_e2.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient(server.URL, "user", "pass")
	if _, err := client.Authenticate(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
