package playback

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records lifecycle calls and fails URLs listed in failing.
type fakeBackend struct {
	mu       sync.Mutex
	loads    []string
	disposes int
	failing  map[string]error
}

func (f *fakeBackend) Load(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, url)
	if err, ok := f.failing[url]; ok {
		return err
	}
	return nil
}

func (f *fakeBackend) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposes++
}

func (f *fakeBackend) loadedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loads...)
}

func (f *fakeBackend) disposeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disposes
}

func singleBackendFactory(backend Backend) BackendFactory {
	return func(string) Backend { return backend }
}

func TestEngine_LoadSuccess(t *testing.T) {
	backend := &fakeBackend{}
	engine := NewEngine(singleBackendFactory(backend))

	require.Equal(t, StateIdle, engine.State())

	err := engine.Load(context.Background(), "http://h/live/u/p/1.m3u8")
	require.NoError(t, err)
	assert.Equal(t, StateReady, engine.State())
	assert.Equal(t, "http://h/live/u/p/1.m3u8", engine.CurrentURL())
	assert.Nil(t, engine.LastError())
}

func TestEngine_LoadFailure(t *testing.T) {
	loadErr := &LoadError{URL: "u", Reason: ReasonNetwork, Err: errors.New("refused")}
	backend := &fakeBackend{failing: map[string]error{"http://bad": loadErr}}
	engine := NewEngine(singleBackendFactory(backend))

	err := engine.Load(context.Background(), "http://bad")
	require.Error(t, err)
	assert.Equal(t, StateFailed, engine.State())
	assert.Equal(t, ReasonNetwork, ReasonOf(engine.LastError()))
}

func TestEngine_LoadDisposesPreviousBackend(t *testing.T) {
	var backends []*fakeBackend
	factory := func(string) Backend {
		b := &fakeBackend{}
		backends = append(backends, b)
		return b
	}
	engine := NewEngine(factory)

	require.NoError(t, engine.Load(context.Background(), "http://first"))
	require.NoError(t, engine.Load(context.Background(), "http://second"))

	require.Len(t, backends, 2)
	assert.Equal(t, 1, backends[0].disposeCount(), "first backend must be disposed before the second attaches")
	assert.Equal(t, 0, backends[1].disposeCount())
}

func TestEngine_DisposeIdempotent(t *testing.T) {
	backend := &fakeBackend{}
	engine := NewEngine(singleBackendFactory(backend))

	// Safe with nothing attached.
	engine.Dispose()
	engine.Dispose()
	assert.Equal(t, 0, backend.disposeCount())

	require.NoError(t, engine.Load(context.Background(), "http://h"))
	engine.Dispose()
	engine.Dispose()
	assert.Equal(t, 1, backend.disposeCount())
	assert.Equal(t, StateIdle, engine.State())
	assert.Empty(t, engine.CurrentURL())
}

func TestEngine_FailedToLoadingOnRetry(t *testing.T) {
	loadErr := &LoadError{URL: "u", Reason: ReasonMedia, Err: errors.New("bad manifest")}
	backend := &fakeBackend{failing: map[string]error{"http://bad": loadErr}}
	engine := NewEngine(singleBackendFactory(backend))

	require.Error(t, engine.Load(context.Background(), "http://bad"))
	require.Equal(t, StateFailed, engine.State())

	require.NoError(t, engine.Load(context.Background(), "http://good"))
	assert.Equal(t, StateReady, engine.State())
	assert.Nil(t, engine.LastError())
}
