package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/bluenviron/gohlslib/v2/pkg/playlist"
)

// FailureReason classifies a fatal load failure.
type FailureReason string

const (
	ReasonNetwork     FailureReason = "network"
	ReasonMedia       FailureReason = "media"
	ReasonUnsupported FailureReason = "unsupported"
	ReasonUnknown     FailureReason = "unknown"
)

// LoadError is a fatal load failure with a classified reason.
type LoadError struct {
	URL    string
	Reason FailureReason
	Err    error
}

// Error implements error.
func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %s: %v", e.URL, e.Reason, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason from err, or ReasonUnknown.
func ReasonOf(err error) FailureReason {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Reason
	}
	return ReasonUnknown
}

// Backend attempts to load one stream URL. Load blocks until the stream is
// confirmed playable or fails with a *LoadError. Dispose releases any
// held resources and is idempotent.
type Backend interface {
	Load(ctx context.Context, url string) error
	Dispose()
}

// BackendFactory picks a backend for a URL. The default factory routes
// manifest-style URLs (.m3u8) to the HLS backend and everything else to the
// direct backend.
type BackendFactory func(url string) Backend

// DefaultBackendFactory builds the standard HLS/direct split using the
// given HTTP client and probe byte limit.
func DefaultBackendFactory(client *http.Client, byteLimit int64) BackendFactory {
	return func(url string) Backend {
		if IsManifestURL(url) {
			return NewHLSBackend(client, byteLimit)
		}
		return NewDirectBackend(client, byteLimit)
	}
}

// IsManifestURL reports whether the URL looks like an HLS manifest.
func IsManifestURL(url string) bool {
	trimmed := url
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.HasSuffix(strings.ToLower(trimmed), ".m3u8")
}

const defaultProbeByteLimit = 256 * 1024

// HLSBackend confirms playability by fetching the manifest and parsing it
// as an HLS playlist. Either a media or a multivariant playlist counts as
// ready; quality switching is the player's concern, not ours.
type HLSBackend struct {
	client    *http.Client
	byteLimit int64

	mu       sync.Mutex
	cancel   context.CancelFunc
	disposed bool
}

// NewHLSBackend creates an HLS probe backend.
func NewHLSBackend(client *http.Client, byteLimit int64) *HLSBackend {
	if client == nil {
		client = http.DefaultClient
	}
	if byteLimit <= 0 {
		byteLimit = defaultProbeByteLimit
	}
	return &HLSBackend{client: client, byteLimit: byteLimit}
}

// Load implements Backend.
func (b *HLSBackend) Load(ctx context.Context, url string) error {
	ctx, done, err := b.begin(ctx, url)
	if err != nil {
		return err
	}
	defer done()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &LoadError{URL: url, Reason: ReasonUnknown, Err: err}
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return &LoadError{URL: url, Reason: ReasonNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &LoadError{URL: url, Reason: ReasonNetwork, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.byteLimit))
	if err != nil {
		return &LoadError{URL: url, Reason: ReasonNetwork, Err: err}
	}

	pl, err := playlist.Unmarshal(data)
	if err != nil {
		return &LoadError{URL: url, Reason: ReasonMedia, Err: fmt.Errorf("parsing manifest: %w", err)}
	}

	switch pl.(type) {
	case *playlist.Media, *playlist.Multivariant:
		return nil
	default:
		return &LoadError{URL: url, Reason: ReasonUnsupported, Err: fmt.Errorf("unrecognized playlist type %T", pl)}
	}
}

// Dispose implements Backend.
func (b *HLSBackend) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.disposed = true
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func (b *HLSBackend) begin(ctx context.Context, url string) (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disposed {
		return nil, nil, &LoadError{URL: url, Reason: ReasonUnknown, Err: errors.New("backend disposed")}
	}

	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	return ctx, cancel, nil
}

// DirectBackend confirms playability of progressive streams with a ranged
// GET: the upstream must answer with bytes that do not look like an HTML
// error page. Panels routinely return 200 with an HTML body for missing
// assets.
type DirectBackend struct {
	client    *http.Client
	byteLimit int64

	mu       sync.Mutex
	cancel   context.CancelFunc
	disposed bool
}

// NewDirectBackend creates a direct probe backend.
func NewDirectBackend(client *http.Client, byteLimit int64) *DirectBackend {
	if client == nil {
		client = http.DefaultClient
	}
	if byteLimit <= 0 {
		byteLimit = defaultProbeByteLimit
	}
	return &DirectBackend{client: client, byteLimit: byteLimit}
}

// Load implements Backend.
func (b *DirectBackend) Load(ctx context.Context, url string) error {
	ctx, done, err := b.begin(ctx, url)
	if err != nil {
		return err
	}
	defer done()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &LoadError{URL: url, Reason: ReasonUnknown, Err: err}
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", b.byteLimit-1))

	resp, err := b.client.Do(req)
	if err != nil {
		return &LoadError{URL: url, Reason: ReasonNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return &LoadError{URL: url, Reason: ReasonNetwork, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return &LoadError{URL: url, Reason: ReasonNetwork, Err: err}
	}
	if n == 0 {
		return &LoadError{URL: url, Reason: ReasonMedia, Err: errors.New("empty response body")}
	}

	contentType := http.DetectContentType(head[:n])
	if strings.HasPrefix(contentType, "text/html") || strings.HasPrefix(contentType, "text/plain") {
		return &LoadError{URL: url, Reason: ReasonUnsupported, Err: fmt.Errorf("got %s instead of media", contentType)}
	}

	return nil
}

// Dispose implements Backend.
func (b *DirectBackend) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.disposed = true
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func (b *DirectBackend) begin(ctx context.Context, url string) (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disposed {
		return nil, nil, &LoadError{URL: url, Reason: ReasonUnknown, Err: errors.New("backend disposed")}
	}

	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	return ctx, cancel, nil
}
