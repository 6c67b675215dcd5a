package xtream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is used when no custom HTTP client is supplied.
const DefaultTimeout = 2 * time.Minute

const (
	pathPlayerAPI = "/player_api.php"
	pathLive      = "/live"
	pathMovie     = "/movie"
	pathSeries    = "/series"

	actionLiveCategories   = "get_live_categories"
	actionVODCategories    = "get_vod_categories"
	actionSeriesCategories = "get_series_categories"
	actionLiveStreams      = "get_live_streams"
	actionVODStreams       = "get_vod_streams"
	actionVODInfo          = "get_vod_info"
	actionSeries           = "get_series"
	actionSeriesInfo       = "get_series_info"
	actionShortEPG         = "get_short_epg"

	paramUsername   = "username"
	paramPassword   = "password"
	paramAction     = "action"
	paramCategoryID = "category_id"
	paramVODID      = "vod_id"
	paramSeriesID   = "series_id"
	paramStreamID   = "stream_id"
	paramLimit      = "limit"

	headerUserAgent      = "User-Agent"
	maxErrorBodyReadSize = 1024
)

// Client talks to a single Xtream Codes panel with a fixed set of credentials.
type Client struct {
	// BaseURL is the panel base URL without a trailing slash,
	// e.g. "http://panel.example.com:8080".
	BaseURL string

	// Username and Password authenticate every request.
	Username string
	Password string

	// HTTPClient performs the requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client

	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// Option configures a Client.
type Option func(*Client)

// NewClient creates a panel client. Any *http.Client can be injected,
// including one wrapped with retries or a circuit breaker.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Username:   username,
		Password:   password,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.UserAgent = ua
	}
}

// WithTimeout replaces the HTTP client with one using the given timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.HTTPClient = &http.Client{Timeout: timeout}
	}
}

// apiURL builds a player_api.php URL for the given action and parameters.
func (c *Client) apiURL(action string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s%s?%s=%s&%s=%s",
		c.BaseURL,
		pathPlayerAPI,
		paramUsername, url.QueryEscape(c.Username),
		paramPassword, url.QueryEscape(c.Password)))

	if action != "" {
		b.WriteString("&" + paramAction + "=" + url.QueryEscape(action))
	}

	for k, v := range params {
		b.WriteString("&" + url.QueryEscape(k) + "=" + url.QueryEscape(v))
	}

	return b.String()
}

func (c *Client) doRequest(ctx context.Context, requestURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if c.UserAgent != "" {
		req.Header.Set(headerUserAgent, c.UserAgent)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyReadSize))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// Authenticate verifies the credentials and returns account and server
// information. A successful HTTP exchange does not imply valid credentials;
// check AccountInfo.UserInfo.IsAuthenticated.
func (c *Client) Authenticate(ctx context.Context) (*AccountInfo, error) {
	var info AccountInfo
	if err := c.doRequest(ctx, c.apiURL("", nil), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// LiveCategories lists the live TV categories.
func (c *Client) LiveCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.doRequest(ctx, c.apiURL(actionLiveCategories, nil), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// VODCategories lists the video on demand categories.
func (c *Client) VODCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.doRequest(ctx, c.apiURL(actionVODCategories, nil), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SeriesCategories lists the series categories.
func (c *Client) SeriesCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.doRequest(ctx, c.apiURL(actionSeriesCategories, nil), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListOptions filters listing calls.
type ListOptions struct {
	// CategoryID restricts results to one category. Empty means all.
	CategoryID string
}

func (o *ListOptions) params() map[string]string {
	params := make(map[string]string)
	if o != nil && o.CategoryID != "" {
		params[paramCategoryID] = o.CategoryID
	}
	return params
}

// LiveStreams lists live channels, optionally filtered by category.
func (c *Client) LiveStreams(ctx context.Context, opts *ListOptions) ([]LiveStream, error) {
	var streams []LiveStream
	if err := c.doRequest(ctx, c.apiURL(actionLiveStreams, opts.params()), &streams); err != nil {
		return nil, err
	}
	return streams, nil
}

// VODItems lists movies, optionally filtered by category.
func (c *Client) VODItems(ctx context.Context, opts *ListOptions) ([]VODItem, error) {
	var items []VODItem
	if err := c.doRequest(ctx, c.apiURL(actionVODStreams, opts.params()), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// VODDetails fetches the detail record for one movie.
func (c *Client) VODDetails(ctx context.Context, vodID string) (*VODInfo, error) {
	params := map[string]string{paramVODID: vodID}

	var info VODInfo
	if err := c.doRequest(ctx, c.apiURL(actionVODInfo, params), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SeriesList lists series, optionally filtered by category.
func (c *Client) SeriesList(ctx context.Context, opts *ListOptions) ([]SeriesItem, error) {
	var series []SeriesItem
	if err := c.doRequest(ctx, c.apiURL(actionSeries, opts.params()), &series); err != nil {
		return nil, err
	}
	return series, nil
}

// SeriesDetails fetches the detail record for one series, including its
// episodes grouped by season number.
func (c *Client) SeriesDetails(ctx context.Context, seriesID string) (*SeriesInfo, error) {
	params := map[string]string{paramSeriesID: seriesID}

	var info SeriesInfo
	if err := c.doRequest(ctx, c.apiURL(actionSeriesInfo, params), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ShortEPG fetches the next EPG entries for a live channel.
// limit of 0 lets the panel pick its default.
func (c *Client) ShortEPG(ctx context.Context, streamID string, limit int) ([]EPGEntry, error) {
	params := map[string]string{paramStreamID: streamID}
	if limit > 0 {
		params[paramLimit] = fmt.Sprintf("%d", limit)
	}

	var response epgResponse
	if err := c.doRequest(ctx, c.apiURL(actionShortEPG, params), &response); err != nil {
		return nil, err
	}
	return response.EPGListings, nil
}

// LiveURL returns the direct URL for a live channel. An empty extension
// returns the bare URL without a container suffix.
func (c *Client) LiveURL(streamID, extension string) string {
	return c.streamURL(pathLive, streamID, extension)
}

// MovieURL returns the direct URL for a movie. An empty extension returns
// the bare URL without a container suffix.
func (c *Client) MovieURL(streamID, extension string) string {
	return c.streamURL(pathMovie, streamID, extension)
}

// SeriesURL returns the direct URL for a series episode. An empty extension
// returns the bare URL without a container suffix.
func (c *Client) SeriesURL(episodeID, extension string) string {
	return c.streamURL(pathSeries, episodeID, extension)
}

func (c *Client) streamURL(path, id, extension string) string {
	base := fmt.Sprintf("%s%s/%s/%s/%s",
		c.BaseURL, path, url.PathEscape(c.Username), url.PathEscape(c.Password), url.PathEscape(id))
	if extension == "" {
		return base
	}
	return base + "." + extension
}
