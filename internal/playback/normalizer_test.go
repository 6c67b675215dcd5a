package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int {
	return &n
}

func TestClassify_HintWins(t *testing.T) {
	// An explicit hint beats every other signal, including an explicit
	// series id.
	item := CatalogItem{
		SeriesID:     "9",
		DeclaredType: KindSeries,
		CategoryName: "Dizi Kanalları",
		Name:         "Some Show Sezon 2",
	}

	assert.Equal(t, KindLive, Classify(item, KindLive))
	assert.Equal(t, KindVOD, Classify(item, KindVOD))
	assert.Equal(t, KindSeries, Classify(item, KindSeries))
}

func TestClassify_SeriesIndicator(t *testing.T) {
	assert.Equal(t, KindSeries, Classify(CatalogItem{SeriesID: "9"}, ""))
	assert.Equal(t, KindSeries, Classify(CatalogItem{DeclaredType: KindSeries}, ""))
}

func TestClassify_CategoryTokens(t *testing.T) {
	tests := []struct {
		category string
		want     ContentKind
	}{
		{"Yerli Diziler", KindSeries},
		{"TV Series", KindSeries},
		{"Aksiyon Filmleri", KindVOD},
		{"Action Movies", KindVOD},
		{"Canlı Yayınlar", KindLive},
		{"Live Channels", KindLive},
		{"UK | TV", KindLive},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := Classify(CatalogItem{StreamID: "1", CategoryName: tt.category}, "")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_NamePattern(t *testing.T) {
	tests := []struct {
		name string
		want ContentKind
	}{
		{"Kurtlar Vadisi Sezon 3", KindSeries},
		{"Some Show Season 1", KindSeries},
		{"Bir Dizi 4. Bölüm", KindSeries},
		{"Breaking News S01E05", KindSeries},
		{"Plain Movie Title", KindVOD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(CatalogItem{StreamID: "1", Name: tt.name}, "")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Fallback(t *testing.T) {
	// No signal at all resolves to vod, never an error.
	assert.Equal(t, KindVOD, Classify(CatalogItem{StreamID: "1"}, ""))
	assert.Equal(t, KindVOD, Classify(CatalogItem{}, ""))
}

func TestNeedsEpisodeSelection(t *testing.T) {
	tests := []struct {
		name string
		item CatalogItem
		kind ContentKind
		want bool
	}{
		{"live never needs selection", CatalogItem{StreamID: "1"}, KindLive, false},
		{"vod never needs selection", CatalogItem{StreamID: "1"}, KindVOD, false},
		{"series missing both", CatalogItem{SeriesID: "9"}, KindSeries, true},
		{"series missing episode", CatalogItem{SeriesID: "9", SeasonNumber: intPtr(1)}, KindSeries, true},
		{"series missing season", CatalogItem{SeriesID: "9", EpisodeNumber: intPtr(2)}, KindSeries, true},
		{"series fully specified", CatalogItem{SeriesID: "9", SeasonNumber: intPtr(1), EpisodeNumber: intPtr(2)}, KindSeries, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsEpisodeSelection(tt.item, tt.kind))
		})
	}
}
