// Package playback implements stream URL resolution and the playback
// fallback cascade for Xtream-style panels.
//
// Panels are inconsistent about container formats and episode identifier
// schemes, so playback is a trial-and-error routine: classify the catalog
// item, build a primary URL, and on failure walk a precomputed sequence of
// alternative URLs with backoff until one loads or the sequence is
// exhausted.
package playback

import (
	"errors"

	"github.com/okarabulut/xtivi/internal/urlutil"
)

// ContentKind classifies a catalog item for URL resolution.
type ContentKind string

const (
	KindLive   ContentKind = "live"
	KindVOD    ContentKind = "vod"
	KindSeries ContentKind = "series"
)

// Valid reports whether k is one of the known kinds.
func (k ContentKind) Valid() bool {
	switch k {
	case KindLive, KindVOD, KindSeries:
		return true
	default:
		return false
	}
}

// CatalogItem is one playable unit: a live channel, a movie, or a series
// episode. Fields mirror what the panel catalog exposes; most are optional
// and classification copes with whatever is present.
type CatalogItem struct {
	// StreamID identifies the item in the panel catalog. Required for live
	// and VOD; for series it may carry the listing's own id.
	StreamID string `json:"stream_id,omitempty"`

	// SeriesID is set for series items.
	SeriesID string `json:"series_id,omitempty"`

	// EpisodeID identifies a specific episode asset when the catalog knows
	// it. Panels sometimes repeat the series id here, which does not
	// identify an episode and is treated as absent.
	EpisodeID string `json:"episode_id,omitempty"`

	// DeclaredType is the panel's own type tag, when present.
	DeclaredType ContentKind `json:"declared_type,omitempty"`

	// CategoryName and Name are free text, used as classification signals.
	CategoryName string `json:"category_name,omitempty"`
	Name         string `json:"name,omitempty"`

	// ContainerExtension is the known container format for VOD items,
	// without a leading dot.
	ContainerExtension string `json:"container_extension,omitempty"`

	// SeasonNumber and EpisodeNumber position an episode within a series.
	// Nil means unknown, which gates series playback on episode selection.
	SeasonNumber  *int `json:"season_number,omitempty"`
	EpisodeNumber *int `json:"episode_number,omitempty"`
}

// HasEpisodePosition reports whether both season and episode numbers are
// known.
func (i CatalogItem) HasEpisodePosition() bool {
	return i.SeasonNumber != nil && i.EpisodeNumber != nil
}

// ErrInvalidCredentials is returned when a resolver call is made with
// incomplete credentials. This is a programmer error, not a panel auth
// failure.
var ErrInvalidCredentials = errors.New("playback: credentials missing host, username, or password")

// Credentials authenticate stream URLs against the panel. They flow as an
// explicit parameter on every resolution call and are never read from
// configuration or global state.
type Credentials struct {
	// Host is the panel base URL, e.g. "http://panel.example.com:8080".
	Host     string `json:"host"`
	Username string `json:"username"`
	Password string `json:"password" masq:"secret"`
}

// Validate checks that all fields are present.
func (c Credentials) Validate() error {
	if c.Host == "" || c.Username == "" || c.Password == "" {
		return ErrInvalidCredentials
	}
	return nil
}

// host returns the base URL normalized for path joining: scheme added when
// missing, trailing slash removed.
func (c Credentials) host() string {
	return urlutil.NormalizeBaseURL(c.Host)
}

// ResolvedURLSet is the derived output of a full resolution: the primary
// URL plus the ordered, deduplicated alternatives to try on failure. It is
// regenerated per request and never cached.
type ResolvedURLSet struct {
	Primary      string   `json:"primary"`
	Alternatives []string `json:"alternatives"`
}
