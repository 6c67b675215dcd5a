// Package proxy streams panel content through the local server so browser
// players never talk to the panel directly.
package proxy

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okarabulut/xtivi/internal/playback"
	"github.com/okarabulut/xtivi/internal/urlutil"
	"github.com/okarabulut/xtivi/pkg/xtream"
)

// hopHeaders are connection-management headers that must not be copied
// between the upstream response and the client.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Config configures the stream proxy.
type Config struct {
	// HTTPClient is the client for upstream requests. The client must not
	// follow an overall timeout; streams run for hours.
	HTTPClient *http.Client

	// UserAgent is sent on upstream requests.
	UserAgent string
}

// Handler proxies stream bytes and manifests from the panel.
type Handler struct {
	config Config
	logger *slog.Logger
}

// NewHandler creates a stream proxy handler.
func NewHandler(config Config, logger *slog.Logger) *Handler {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{config: config, logger: logger}
}

// ServeStream handles GET /stream/{kind}/{id}. Credentials arrive as query
// parameters from the browser session; ext optionally overrides the
// container extension.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	kind := playback.ContentKind(chi.URLParam(r, "kind"))
	id := chi.URLParam(r, "id")

	if !kind.Valid() {
		http.Error(w, "unknown content kind", http.StatusBadRequest)
		return
	}
	if id == "" {
		http.Error(w, "missing stream id", http.StatusBadRequest)
		return
	}

	creds := playback.Credentials{
		Host:     r.URL.Query().Get("host"),
		Username: r.URL.Query().Get("username"),
		Password: r.URL.Query().Get("password"),
	}
	if err := creds.Validate(); err != nil {
		http.Error(w, "missing panel credentials", http.StatusBadRequest)
		return
	}

	upstreamURL := streamURL(creds, kind, id, r.URL.Query().Get("ext"))
	h.passthrough(w, r, upstreamURL)
}

// ServeProxy handles GET /proxy?url=. Only absolute http(s) URLs are
// accepted.
func (h *Handler) ServeProxy(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		http.Error(w, "invalid url parameter", http.StatusBadRequest)
		return
	}

	h.passthrough(w, r, target.String())
}

// passthrough forwards the upstream response unchanged: status, headers
// minus connection management, and body.
func (h *Handler) passthrough(w http.ResponseWriter, r *http.Request, upstreamURL string) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstreamURL, nil)
	if err != nil {
		http.Error(w, "invalid upstream url", http.StatusBadRequest)
		return
	}

	if h.config.UserAgent != "" {
		req.Header.Set("User-Agent", h.config.UserAgent)
	}
	// Range requests pass through so players can seek.
	if rng := r.Header.Get("Range"); rng != "" {
		req.Header.Set("Range", rng)
	}

	started := time.Now()
	resp, err := h.config.HTTPClient.Do(req)
	if err != nil {
		h.logger.Warn("upstream request failed",
			slog.String("url", urlutil.RedactStreamURL(upstreamURL)),
			slog.String("error", err.Error()),
		)
		http.Error(w, "upstream unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	header := w.Header()
	copyHeaders(header, resp.Header)
	setCORS(header)
	header.Set("X-Stream-URL", urlutil.RedactStreamURL(upstreamURL))

	w.WriteHeader(resp.StatusCode)

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		// Client disconnects are routine for long-running streams.
		h.logger.Debug("stream copy ended",
			slog.String("url", urlutil.RedactStreamURL(upstreamURL)),
			slog.Int64("bytes", written),
			slog.Duration("elapsed", time.Since(started)),
			slog.String("error", err.Error()),
		)
		return
	}

	h.logger.Debug("stream complete",
		slog.String("url", urlutil.RedactStreamURL(upstreamURL)),
		slog.Int("status", resp.StatusCode),
		slog.Int64("bytes", written),
		slog.Duration("elapsed", time.Since(started)),
	)
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, v := range values {
			dst.Add(key, v)
		}
	}
	for _, key := range hopHeaders {
		dst.Del(key)
	}
}

func setCORS(header http.Header) {
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Range, Origin, Accept")
	header.Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")
}

// streamURL builds the upstream URL for one catalog item, defaulting the
// extension per kind when the caller does not pin one.
func streamURL(creds playback.Credentials, kind playback.ContentKind, id, ext string) string {
	client := xtream.NewClient(creds.Host, creds.Username, creds.Password)

	switch kind {
	case playback.KindLive:
		if ext == "" {
			ext = "m3u8"
		}
		return client.LiveURL(id, ext)
	case playback.KindVOD:
		if ext == "" {
			ext = "mp4"
		}
		return client.MovieURL(id, ext)
	default:
		if ext == "" {
			ext = "mp4"
		}
		return client.SeriesURL(id, ext)
	}
}
