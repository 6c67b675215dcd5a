package xtream

import (
	"encoding/json"
	"strconv"
	"time"
)

// AccountInfo is the combined user and server record returned by an
// authentication call.
type AccountInfo struct {
	UserInfo   UserInfo   `json:"user_info"`
	ServerInfo ServerInfo `json:"server_info"`
}

// UserInfo describes the panel account.
type UserInfo struct {
	Username             string   `json:"username"`
	Password             string   `json:"password" masq:"secret"`
	Message              string   `json:"message"`
	Auth                 FlexInt  `json:"auth"`
	Status               string   `json:"status"`
	ExpDate              FlexInt  `json:"exp_date"`
	IsTrial              FlexInt  `json:"is_trial"`
	ActiveConnections    FlexInt  `json:"active_cons"`
	CreatedAt            FlexInt  `json:"created_at"`
	MaxConnections       FlexInt  `json:"max_connections"`
	AllowedOutputFormats []string `json:"allowed_output_formats"`
}

// IsAuthenticated reports whether the panel accepted the credentials and
// the account is active.
func (u *UserInfo) IsAuthenticated() bool {
	return u.Auth.Int() == 1 && u.Status == "Active"
}

// ExpirationTime returns when the account expires, or the zero time when
// the panel reports no expiry.
func (u *UserInfo) ExpirationTime() time.Time {
	if u.ExpDate.Int() == 0 {
		return time.Time{}
	}
	return time.Unix(u.ExpDate.Int(), 0)
}

// IsExpired reports whether the account expiry has passed.
func (u *UserInfo) IsExpired() bool {
	exp := u.ExpirationTime()
	if exp.IsZero() {
		return false
	}
	return time.Now().After(exp)
}

// ServerInfo describes the panel server.
type ServerInfo struct {
	URL            string  `json:"url"`
	Port           FlexInt `json:"port"`
	HTTPSPort      FlexInt `json:"https_port"`
	ServerProtocol string  `json:"server_protocol"`
	Timezone       string  `json:"timezone"`
	TimestampNow   FlexInt `json:"timestamp_now"`
	TimeNow        string  `json:"time_now"`
}

// Category is a content category in any of the three catalogs.
type Category struct {
	CategoryID   FlexString `json:"category_id"`
	CategoryName string     `json:"category_name"`
	ParentID     FlexInt    `json:"parent_id"`
}

// LiveStream is one live channel from the live catalog.
type LiveStream struct {
	Num           FlexInt    `json:"num"`
	Name          string     `json:"name"`
	StreamType    string     `json:"stream_type"`
	StreamID      FlexInt    `json:"stream_id"`
	StreamIcon    string     `json:"stream_icon"`
	EPGChannelID  string     `json:"epg_channel_id"`
	Added         FlexInt    `json:"added"`
	IsAdult       FlexInt    `json:"is_adult"`
	CategoryID    FlexString `json:"category_id"`
	CustomSID     string     `json:"custom_sid"`
	TVArchive     FlexInt    `json:"tv_archive"`
	TVArchiveDays FlexInt    `json:"tv_archive_duration"`
	DirectSource  string     `json:"direct_source"`
}

// VODItem is one movie from the VOD catalog.
type VODItem struct {
	Num                FlexInt    `json:"num"`
	Name               string     `json:"name"`
	StreamType         string     `json:"stream_type"`
	StreamID           FlexInt    `json:"stream_id"`
	StreamIcon         string     `json:"stream_icon"`
	Rating             FlexFloat  `json:"rating"`
	Added              FlexInt    `json:"added"`
	IsAdult            FlexInt    `json:"is_adult"`
	CategoryID         FlexString `json:"category_id"`
	ContainerExtension string     `json:"container_extension"`
	CustomSID          string     `json:"custom_sid"`
	DirectSource       string     `json:"direct_source"`
}

// VODInfo is the detail record for one movie.
type VODInfo struct {
	Info      VODDetails `json:"info"`
	MovieData VODItem    `json:"movie_data"`
}

// VODDetails holds the movie metadata inside a VODInfo.
type VODDetails struct {
	MovieImage     string    `json:"movie_image"`
	TMDBId         FlexInt   `json:"tmdb_id"`
	Backdrop       string    `json:"backdrop_path"`
	YoutubeTrailer string    `json:"youtube_trailer"`
	Genre          string    `json:"genre"`
	Plot           string    `json:"plot"`
	Cast           string    `json:"cast"`
	Rating         FlexFloat `json:"rating"`
	Director       string    `json:"director"`
	ReleaseDate    string    `json:"releasedate"`
	Duration       string    `json:"duration"`
	DurationSecs   FlexInt   `json:"duration_secs"`
	Bitrate        FlexInt   `json:"bitrate"`
}

// SeriesItem is one series from the series catalog listing.
type SeriesItem struct {
	Num            FlexInt    `json:"num"`
	Name           string     `json:"name"`
	SeriesID       FlexInt    `json:"series_id"`
	Cover          string     `json:"cover"`
	Plot           string     `json:"plot"`
	Cast           string     `json:"cast"`
	Director       string     `json:"director"`
	Genre          string     `json:"genre"`
	ReleaseDate    string     `json:"releaseDate"`
	LastModified   FlexInt    `json:"last_modified"`
	Rating         FlexFloat  `json:"rating"`
	BackdropPath   []string   `json:"backdrop_path"`
	YoutubeTrailer string     `json:"youtube_trailer"`
	TMDBId         FlexInt    `json:"tmdb_id"`
	CategoryID     FlexString `json:"category_id"`
}

// SeriesInfo is the detail record for one series. Episodes are keyed by
// season number as a string, matching the panel wire format.
type SeriesInfo struct {
	Seasons  []Season             `json:"seasons"`
	Info     SeriesDetails        `json:"info"`
	Episodes map[string][]Episode `json:"episodes"`
}

// Season describes one season inside a SeriesInfo.
type Season struct {
	AirDate      string `json:"air_date"`
	EpisodeCount int    `json:"episode_count"`
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	SeasonNumber int    `json:"season_number"`
	Cover        string `json:"cover"`
	CoverBig     string `json:"cover_big"`
}

// SeriesDetails holds the series metadata inside a SeriesInfo.
type SeriesDetails struct {
	Name           string     `json:"name"`
	Cover          string     `json:"cover"`
	Plot           string     `json:"plot"`
	Cast           string     `json:"cast"`
	Director       string     `json:"director"`
	Genre          string     `json:"genre"`
	ReleaseDate    string     `json:"releaseDate"`
	LastModified   FlexInt    `json:"last_modified"`
	Rating         FlexFloat  `json:"rating"`
	BackdropPath   []string   `json:"backdrop_path"`
	YoutubeTrailer string     `json:"youtube_trailer"`
	TMDBId         FlexInt    `json:"tmdb_id"`
	EpisodeRunTime string     `json:"episode_run_time"`
	CategoryID     FlexString `json:"category_id"`
}

// Episode is one episode inside a SeriesInfo.
type Episode struct {
	ID                 FlexString `json:"id"`
	EpisodeNum         FlexInt    `json:"episode_num"`
	Title              string     `json:"title"`
	ContainerExtension string     `json:"container_extension"`
	CustomSID          string     `json:"custom_sid"`
	Added              FlexInt    `json:"added"`
	Season             FlexInt    `json:"season"`
	DirectSource       string     `json:"direct_source"`
	Info               EpisodeMeta `json:"info"`
}

// EpisodeMeta holds the per-episode metadata.
type EpisodeMeta struct {
	MovieImage   string    `json:"movie_image"`
	Plot         string    `json:"plot"`
	ReleaseDate  string    `json:"releasedate"`
	Rating       FlexFloat `json:"rating"`
	Duration     string    `json:"duration"`
	DurationSecs FlexInt   `json:"duration_secs"`
	Bitrate      FlexInt   `json:"bitrate"`
}

// EPGEntry is one program in a channel's EPG listing.
type EPGEntry struct {
	ID             FlexString `json:"id"`
	EPGId          FlexString `json:"epg_id"`
	Title          string     `json:"title"`
	Lang           string     `json:"lang"`
	Start          string     `json:"start"`
	End            string     `json:"end"`
	Description    string     `json:"description"`
	ChannelID      string     `json:"channel_id"`
	StartTimestamp FlexInt    `json:"start_timestamp"`
	StopTimestamp  FlexInt    `json:"stop_timestamp"`
	NowPlaying     FlexInt    `json:"now_playing"`
	HasArchive     FlexInt    `json:"has_archive"`
}

// StartTime returns the program start time, falling back to the textual
// start field when the timestamp is missing.
func (e *EPGEntry) StartTime() time.Time {
	if e.StartTimestamp.Int() > 0 {
		return time.Unix(e.StartTimestamp.Int(), 0)
	}
	if t, err := time.Parse("2006-01-02 15:04:05", e.Start); err == nil {
		return t
	}
	return time.Time{}
}

// EndTime returns the program end time, falling back to the textual end
// field when the timestamp is missing.
func (e *EPGEntry) EndTime() time.Time {
	if e.StopTimestamp.Int() > 0 {
		return time.Unix(e.StopTimestamp.Int(), 0)
	}
	if t, err := time.Parse("2006-01-02 15:04:05", e.End); err == nil {
		return t
	}
	return time.Time{}
}

type epgResponse struct {
	EPGListings []EPGEntry `json:"epg_listings"`
}

// FlexInt decodes a JSON value that may arrive as a number or a string.
// Unparseable values decode to zero rather than failing the whole document.
type FlexInt int64

// Int returns the value as int64.
func (f FlexInt) Int() int64 {
	return int64(f)
}

// String returns the decimal representation.
func (f FlexInt) String() string {
	return strconv.FormatInt(int64(f), 10)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(n)
		return nil
	}

	*f = 0
	return nil
}

// FlexFloat decodes a JSON value that may arrive as a number or a string.
type FlexFloat float64

// Float returns the value as float64.
func (f FlexFloat) Float() float64 {
	return float64(f)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat(n)
		return nil
	}

	*f = 0
	return nil
}

// FlexString decodes a JSON value that may arrive as a string or a number.
type FlexString string

// String returns the underlying string.
func (f FlexString) String() string {
	return string(f)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	*f = ""
	return nil
}
