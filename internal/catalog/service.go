// Package catalog serves panel catalog listings through a TTL cache with
// scheduled background refresh.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okarabulut/xtivi/internal/playback"
	"github.com/okarabulut/xtivi/internal/version"
	"github.com/okarabulut/xtivi/pkg/xtream"
)

// Entry is one catalog listing row, normalized across the three kinds so
// the API and the playback core consume a single shape.
type Entry struct {
	StreamID           string  `json:"stream_id"`
	SeriesID           string  `json:"series_id,omitempty"`
	Name               string  `json:"name"`
	Icon               string  `json:"icon,omitempty"`
	CategoryID         string  `json:"category_id,omitempty"`
	Kind               string  `json:"kind"`
	ContainerExtension string  `json:"container_extension,omitempty"`
	EPGChannelID       string  `json:"epg_channel_id,omitempty"`
	Rating             float64 `json:"rating,omitempty"`
}

// SeasonSummary is one season of a series.
type SeasonSummary struct {
	Number       int    `json:"number"`
	Name         string `json:"name,omitempty"`
	EpisodeCount int    `json:"episode_count"`
}

// EpisodeEntry is one episode within a series detail.
type EpisodeEntry struct {
	EpisodeID          string `json:"episode_id"`
	Title              string `json:"title"`
	SeasonNumber       int    `json:"season_number"`
	EpisodeNumber      int    `json:"episode_number"`
	ContainerExtension string `json:"container_extension,omitempty"`
	DurationSecs       int64  `json:"duration_secs,omitempty"`
}

// SeriesDetail is the season/episode enumeration for one series.
type SeriesDetail struct {
	SeriesID string          `json:"series_id"`
	Name     string          `json:"name"`
	Plot     string          `json:"plot,omitempty"`
	Cover    string          `json:"cover,omitempty"`
	Genre    string          `json:"genre,omitempty"`
	Seasons  []SeasonSummary `json:"seasons"`
	Episodes []EpisodeEntry  `json:"episodes"`
}

// clientFactory builds a panel client for a set of credentials. Swappable
// in tests.
type clientFactory func(creds playback.Credentials) *xtream.Client

// Service answers catalog queries, caching per panel account.
type Service struct {
	cache     *Cache
	factory   clientFactory
	logger    *slog.Logger
	cron      *cron.Cron
	cronSpec  string
	cronEntry cron.EntryID
}

// NewService creates the catalog service. httpClient is used for all panel
// requests; refreshCron is a 6-field cron spec for the background refresh
// sweep, empty to disable.
func NewService(httpClient *http.Client, ttl time.Duration, refreshCron string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cache:    NewCache(ttl),
		cronSpec: refreshCron,
		logger:   logger,
		factory: func(creds playback.Credentials) *xtream.Client {
			return xtream.NewClient(creds.Host, creds.Username, creds.Password,
				xtream.WithHTTPClient(httpClient),
				xtream.WithUserAgent(version.UserAgent()),
			)
		},
	}
}

// StartRefresh schedules the background refresh sweep. No-op when no cron
// spec is configured.
func (s *Service) StartRefresh() error {
	if s.cronSpec == "" {
		return nil
	}

	s.cron = cron.New(cron.WithSeconds())
	id, err := s.cron.AddFunc(s.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		refreshed, dropped := s.cache.RefreshStale(ctx)
		if refreshed > 0 || dropped > 0 {
			s.logger.Info("catalog cache refresh sweep",
				slog.Int("refreshed", refreshed),
				slog.Int("dropped", dropped),
				slog.Int("entries", s.cache.Len()),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling catalog refresh: %w", err)
	}

	s.cronEntry = id
	s.cron.Start()
	s.logger.Info("catalog refresh scheduled", slog.String("cron", s.cronSpec))
	return nil
}

// Stop halts the background refresh sweep.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Authenticate validates credentials against the panel. Never cached.
func (s *Service) Authenticate(ctx context.Context, creds playback.Credentials) (*xtream.AccountInfo, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return s.factory(creds).Authenticate(ctx)
}

// Categories lists the categories of one catalog kind.
func (s *Service) Categories(ctx context.Context, creds playback.Credentials, kind string) ([]xtream.Category, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(creds, "categories", kind, "")
	value, hit, err := s.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		client := s.factory(creds)
		switch kind {
		case "live":
			return client.LiveCategories(ctx)
		case "vod":
			return client.VODCategories(ctx)
		case "series":
			return client.SeriesCategories(ctx)
		default:
			return nil, fmt.Errorf("catalog: unknown kind %q", kind)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logCacheAccess("categories", kind, hit)
	return value.([]xtream.Category), nil
}

// Streams lists the items of one catalog kind, optionally filtered by
// category, normalized to Entry.
func (s *Service) Streams(ctx context.Context, creds playback.Credentials, kind, categoryID string) ([]Entry, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(creds, "streams", kind, categoryID)
	value, hit, err := s.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		client := s.factory(creds)
		opts := &xtream.ListOptions{CategoryID: categoryID}

		switch kind {
		case "live":
			streams, err := client.LiveStreams(ctx, opts)
			if err != nil {
				return nil, err
			}
			return normalizeLive(streams), nil
		case "vod":
			items, err := client.VODItems(ctx, opts)
			if err != nil {
				return nil, err
			}
			return normalizeVOD(items), nil
		case "series":
			series, err := client.SeriesList(ctx, opts)
			if err != nil {
				return nil, err
			}
			return normalizeSeries(series), nil
		default:
			return nil, fmt.Errorf("catalog: unknown kind %q", kind)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logCacheAccess("streams", kind, hit)
	return value.([]Entry), nil
}

// SeriesDetail enumerates the seasons and episodes of one series.
func (s *Service) SeriesDetail(ctx context.Context, creds playback.Credentials, seriesID string) (*SeriesDetail, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(creds, "series_detail", seriesID, "")
	value, hit, err := s.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		info, err := s.factory(creds).SeriesDetails(ctx, seriesID)
		if err != nil {
			return nil, err
		}
		return buildSeriesDetail(seriesID, info), nil
	})
	if err != nil {
		return nil, err
	}

	s.logCacheAccess("series_detail", seriesID, hit)
	return value.(*SeriesDetail), nil
}

// ShortEPG fetches the upcoming EPG entries for a live channel. Never
// cached; EPG data goes stale too quickly.
func (s *Service) ShortEPG(ctx context.Context, creds playback.Credentials, streamID string, limit int) ([]xtream.EPGEntry, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return s.factory(creds).ShortEPG(ctx, streamID, limit)
}

// InvalidateCache drops every cached listing.
func (s *Service) InvalidateCache() {
	s.cache.Invalidate()
}

func (s *Service) logCacheAccess(what, qualifier string, hit bool) {
	s.logger.Debug("catalog access",
		slog.String("what", what),
		slog.String("qualifier", qualifier),
		slog.Bool("cache_hit", hit),
	)
}

// cacheKey scopes cache entries per panel account. The password stays out
// of the key; host plus username identifies the account.
func cacheKey(creds playback.Credentials, parts ...string) string {
	key := creds.Host + "|" + creds.Username
	for _, p := range parts {
		key += "|" + p
	}
	return key
}

func normalizeLive(streams []xtream.LiveStream) []Entry {
	entries := make([]Entry, 0, len(streams))
	for _, s := range streams {
		entries = append(entries, Entry{
			StreamID:     s.StreamID.String(),
			Name:         s.Name,
			Icon:         s.StreamIcon,
			CategoryID:   s.CategoryID.String(),
			Kind:         "live",
			EPGChannelID: s.EPGChannelID,
		})
	}
	return entries
}

func normalizeVOD(items []xtream.VODItem) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, v := range items {
		entries = append(entries, Entry{
			StreamID:           v.StreamID.String(),
			Name:               v.Name,
			Icon:               v.StreamIcon,
			CategoryID:         v.CategoryID.String(),
			Kind:               "vod",
			ContainerExtension: v.ContainerExtension,
			Rating:             v.Rating.Float(),
		})
	}
	return entries
}

func normalizeSeries(series []xtream.SeriesItem) []Entry {
	entries := make([]Entry, 0, len(series))
	for _, sr := range series {
		entries = append(entries, Entry{
			StreamID:   sr.SeriesID.String(),
			SeriesID:   sr.SeriesID.String(),
			Name:       sr.Name,
			Icon:       sr.Cover,
			CategoryID: sr.CategoryID.String(),
			Kind:       "series",
			Rating:     sr.Rating.Float(),
		})
	}
	return entries
}

func buildSeriesDetail(seriesID string, info *xtream.SeriesInfo) *SeriesDetail {
	detail := &SeriesDetail{
		SeriesID: seriesID,
		Name:     info.Info.Name,
		Plot:     info.Info.Plot,
		Cover:    info.Info.Cover,
		Genre:    info.Info.Genre,
		Seasons:  make([]SeasonSummary, 0, len(info.Seasons)),
		Episodes: make([]EpisodeEntry, 0),
	}

	episodeCounts := make(map[int]int)
	for seasonKey, episodes := range info.Episodes {
		seasonNum, err := strconv.Atoi(seasonKey)
		if err != nil {
			continue
		}
		episodeCounts[seasonNum] = len(episodes)

		for _, ep := range episodes {
			detail.Episodes = append(detail.Episodes, EpisodeEntry{
				EpisodeID:          ep.ID.String(),
				Title:              ep.Title,
				SeasonNumber:       seasonNum,
				EpisodeNumber:      int(ep.EpisodeNum.Int()),
				ContainerExtension: ep.ContainerExtension,
				DurationSecs:       ep.Info.DurationSecs.Int(),
			})
		}
	}

	// Prefer the panel's season metadata; fall back to what the episode map
	// implies when it is missing or empty.
	if len(info.Seasons) > 0 {
		for _, season := range info.Seasons {
			count := season.EpisodeCount
			if count == 0 {
				count = episodeCounts[season.SeasonNumber]
			}
			detail.Seasons = append(detail.Seasons, SeasonSummary{
				Number:       season.SeasonNumber,
				Name:         season.Name,
				EpisodeCount: count,
			})
		}
	} else {
		for seasonNum, count := range episodeCounts {
			detail.Seasons = append(detail.Seasons, SeasonSummary{
				Number:       seasonNum,
				EpisodeCount: count,
			})
		}
	}

	sort.Slice(detail.Seasons, func(i, j int) bool {
		return detail.Seasons[i].Number < detail.Seasons[j].Number
	})
	sort.Slice(detail.Episodes, func(i, j int) bool {
		if detail.Episodes[i].SeasonNumber != detail.Episodes[j].SeasonNumber {
			return detail.Episodes[i].SeasonNumber < detail.Episodes[j].SeasonNumber
		}
		return detail.Episodes[i].EpisodeNumber < detail.Episodes[j].EpisodeNumber
	})

	return detail
}
