package playback

import (
	"regexp"
	"strings"
)

// Category tokens checked by Classify, case-insensitive substring match.
// Turkish and English forms both appear on the panels this serves.
var (
	seriesTokens = []string{"dizi", "series", "show"}
	vodTokens    = []string{"film", "movie", "sinema", "cinema"}
	liveTokens   = []string{"canlı", "canli", "live", "tv"}
)

// seasonEpisodePattern matches numeral-adjacent season/episode markers in
// item names, e.g. "Sezon 2", "season 3", "4. Bölüm", "S01E02".
var seasonEpisodePattern = regexp.MustCompile(
	`(?i)(sezon|season|bölüm|bolum|episode)\s*\.?\s*\d+|\d+\s*\.?\s*(sezon|season|bölüm|bolum|episode)|\bs\d+\s*e\d+\b`)

// Classify determines the content kind of a catalog item. Resolution order
// prefers explicit signals over inference:
//
//  1. A caller-supplied hint wins unconditionally.
//  2. An explicit series indicator (series id or declared type).
//  3. Category name token matching.
//  4. Season/episode lexical patterns in the item name.
//  5. Fallback: vod.
//
// Classify is pure and always returns a kind; absence of signal resolves to
// the fallback rather than failing.
func Classify(item CatalogItem, hint ContentKind) ContentKind {
	if hint.Valid() {
		return hint
	}

	if item.SeriesID != "" || item.DeclaredType == KindSeries {
		return KindSeries
	}

	if item.CategoryName != "" {
		category := strings.ToLower(item.CategoryName)
		for _, token := range seriesTokens {
			if strings.Contains(category, token) {
				return KindSeries
			}
		}
		for _, token := range vodTokens {
			if strings.Contains(category, token) {
				return KindVOD
			}
		}
		for _, token := range liveTokens {
			if strings.Contains(category, token) {
				return KindLive
			}
		}
	}

	if item.Name != "" && seasonEpisodePattern.MatchString(item.Name) {
		return KindSeries
	}

	return KindVOD
}

// NeedsEpisodeSelection reports whether playback must pause for the user to
// pick a season and episode: true iff the item is a series and either
// position number is unknown. Callers check this before resolving a primary
// URL; the resolver re-checks it and returns ErrEpisodeSelectionRequired
// rather than assume the caller did.
func NeedsEpisodeSelection(item CatalogItem, kind ContentKind) bool {
	return kind == KindSeries && !item.HasEpisodePosition()
}
