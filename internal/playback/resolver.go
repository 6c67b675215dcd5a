package playback

import (
	"errors"
	"fmt"
)

// ErrEpisodeSelectionRequired signals that a series item cannot be resolved
// until the user picks a season and episode. It is a control-flow sentinel,
// not a failure: callers branch on it with errors.Is and prompt for
// selection instead of reporting an error.
var ErrEpisodeSelectionRequired = errors.New("playback: episode selection required")

// Container guess sequences, in compatibility-descending order. mp4 leads
// for VOD because it plays most broadly without adaptive-streaming
// machinery. The empty string means no container suffix at all.
var (
	liveContainers   = []string{"m3u8", "ts", ""}
	vodContainers    = []string{"mp4", "ts", "m3u8", "", "mkv", "avi"}
	seriesContainers = []string{"mp4", "ts", "m3u8", ""}
)

const (
	pathLive   = "live"
	pathMovie  = "movie"
	pathSeries = "series"

	defaultVODExtension    = "mp4"
	defaultSeriesExtension = "mp4"
)

// ResolvePrimary builds the first URL to attempt for an item of the given
// kind. For under-specified series items it returns
// ErrEpisodeSelectionRequired.
func ResolvePrimary(item CatalogItem, kind ContentKind, creds Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}

	switch kind {
	case KindLive:
		return streamURL(creds, pathLive, item.StreamID, "m3u8"), nil

	case KindVOD:
		ext := item.ContainerExtension
		if ext == "" {
			ext = defaultVODExtension
		}
		return streamURL(creds, pathMovie, item.StreamID, ext), nil

	case KindSeries:
		if !item.HasEpisodePosition() {
			return "", ErrEpisodeSelectionRequired
		}
		return streamURL(creds, pathSeries, primaryEpisodeAssetID(item), defaultSeriesExtension), nil

	default:
		return "", fmt.Errorf("playback: unknown content kind %q", kind)
	}
}

// primaryEpisodeAssetID picks the identifier used in the primary series
// URL: the explicit episode id when it actually identifies an episode,
// otherwise a synthesized "{series}_s{season}_e{episode}". Panels sometimes
// store the series id in the episode id field, which identifies nothing.
func primaryEpisodeAssetID(item CatalogItem) string {
	if item.EpisodeID != "" && item.EpisodeID != item.SeriesID {
		return item.EpisodeID
	}
	return fmt.Sprintf("%s_s%d_e%d", item.SeriesID, *item.SeasonNumber, *item.EpisodeNumber)
}

// ResolveAlternatives builds the ordered sequence of fallback URLs to try
// after the primary fails. The sequence is deterministic for a given input,
// contains no duplicates, and never contains primaryURL. It is a
// precomputed plan, not live retry state: callers walk it with their own
// attempt index.
//
// For series items the panel is inconsistent on two independent axes, the
// episode identifier scheme and the container format, so candidates expand
// as identifier x container. An empty sequence (never nil) means nothing is
// resolvable.
func ResolveAlternatives(item CatalogItem, kind ContentKind, creds Credentials, primaryURL string) ([]string, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	var candidates []string
	switch kind {
	case KindLive:
		if item.StreamID != "" {
			for _, ext := range liveContainers {
				candidates = append(candidates, streamURL(creds, pathLive, item.StreamID, ext))
			}
		}

	case KindVOD:
		if item.StreamID != "" {
			for _, ext := range vodContainers {
				candidates = append(candidates, streamURL(creds, pathMovie, item.StreamID, ext))
			}
		}

	case KindSeries:
		for _, id := range episodeAssetCandidates(item) {
			for _, ext := range seriesContainers {
				candidates = append(candidates, streamURL(creds, pathSeries, id, ext))
			}
		}

	default:
		return nil, fmt.Errorf("playback: unknown content kind %q", kind)
	}

	alternatives := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates)+1)
	seen[primaryURL] = struct{}{}
	for _, url := range candidates {
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		alternatives = append(alternatives, url)
	}

	return alternatives, nil
}

// Resolve combines ResolvePrimary and ResolveAlternatives into one
// ResolvedURLSet.
func Resolve(item CatalogItem, kind ContentKind, creds Credentials) (*ResolvedURLSet, error) {
	primary, err := ResolvePrimary(item, kind, creds)
	if err != nil {
		return nil, err
	}

	alternatives, err := ResolveAlternatives(item, kind, creds, primary)
	if err != nil {
		return nil, err
	}

	return &ResolvedURLSet{Primary: primary, Alternatives: alternatives}, nil
}

// episodeAssetCandidates lists episode identifier guesses in priority
// order, skipping unsynthesizable and empty entries.
func episodeAssetCandidates(item CatalogItem) []string {
	candidates := make([]string, 0, 6)

	if item.EpisodeID != "" {
		candidates = append(candidates, item.EpisodeID)
	}
	if item.StreamID != "" {
		candidates = append(candidates, item.StreamID)
	}
	if item.SeriesID != "" && item.HasEpisodePosition() {
		s, e := *item.SeasonNumber, *item.EpisodeNumber
		candidates = append(candidates,
			fmt.Sprintf("%s_s%d_e%d", item.SeriesID, s, e),
			fmt.Sprintf("%ss%de%d", item.SeriesID, s, e),
			fmt.Sprintf("%s-%d-%d", item.SeriesID, s, e),
		)
	}
	if item.SeriesID != "" {
		candidates = append(candidates, item.SeriesID)
	}

	return candidates
}

// streamURL renders one of the panel's direct stream URL templates. An
// empty extension omits the container suffix.
func streamURL(creds Credentials, path, id, extension string) string {
	base := fmt.Sprintf("%s/%s/%s/%s/%s", creds.host(), path, creds.Username, creds.Password, id)
	if extension == "" {
		return base
	}
	return base + "." + extension
}
