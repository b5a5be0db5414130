package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/creastudio/client"
	"github.com/hrygo/creastudio/envelope"
	"github.com/hrygo/creastudio/metrics"
)

type fakeLoader struct {
	calls   atomic.Int32
	release chan struct{}
	fail    atomic.Bool
}

func (f *fakeLoader) LoadAll(ctx context.Context) *envelope.Response[client.Catalogs] {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.fail.Load() {
		return envelope.Error[client.Catalogs](envelope.CodeServiceUnavailable, "down")
	}
	return envelope.Success(client.Catalogs{
		Objectives: []client.CatalogEntry{
			{ID: 1, Name: "Sell", IsActive: true},
			{ID: 2, Name: "Inform", IsActive: false},
		},
		Styles: []client.CatalogEntry{
			{ID: 10, Name: "Minimal", IsActive: true},
			{ID: 11, Name: "Retro", IsActive: true},
		},
	}, "", nil)
}

func TestCache_LoadOnce(t *testing.T) {
	loader := &fakeLoader{}
	exporter := metrics.NewExporter(metrics.DefaultConfig())
	c := New(loader, exporter)

	assert.False(t, c.Loaded())
	assert.Nil(t, c.Objectives())

	require.True(t, c.Load(t.Context()).IsSuccess())
	require.True(t, c.Load(t.Context()).IsSuccess())
	assert.Equal(t, int32(1), loader.calls.Load())
	assert.True(t, c.Loaded())
	assert.False(t, c.LoadedAt().IsZero())
}

func TestCache_ConcurrentLoadsShareOneRound(t *testing.T) {
	loader := &fakeLoader{release: make(chan struct{})}
	c := New(loader, nil)

	var wg sync.WaitGroup
	results := make([]*envelope.Response[client.Catalogs], 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Load(context.Background())
		}(i)
	}
	// Hold the first flight open while the others arrive.
	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(loader.release)
	wg.Wait()

	for _, r := range results {
		assert.True(t, r.IsSuccess())
	}
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestCache_Lookups(t *testing.T) {
	c := New(&fakeLoader{}, nil)
	require.True(t, c.Load(t.Context()).IsSuccess())

	assert.Len(t, c.Objectives(), 2)
	assert.Len(t, c.ActiveObjectives(), 1)
	assert.Len(t, c.ActiveStyles(), 2)

	o, ok := c.Objective(2)
	require.True(t, ok)
	assert.Equal(t, "Inform", o.Name)

	_, ok = c.Style(99)
	assert.False(t, ok)

	o, ok = c.ObjectiveByName("sELL")
	require.True(t, ok)
	assert.Equal(t, int64(1), o.ID)

	s, ok := c.StyleByName("retro")
	require.True(t, ok)
	assert.Equal(t, int64(11), s.ID)
}

func TestCache_FailureIsNotCached(t *testing.T) {
	loader := &fakeLoader{}
	loader.fail.Store(true)
	c := New(loader, nil)

	resp := c.Load(t.Context())
	require.True(t, resp.IsError())
	assert.Equal(t, envelope.CodeServiceUnavailable, resp.Code())
	assert.False(t, c.Loaded())

	loader.fail.Store(false)
	assert.True(t, c.Load(t.Context()).IsSuccess())
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCache_ReloadKeepsDataOnFailure(t *testing.T) {
	loader := &fakeLoader{}
	c := New(loader, nil)
	require.True(t, c.Load(t.Context()).IsSuccess())

	loader.fail.Store(true)
	assert.True(t, c.Reload(t.Context()).IsError())
	assert.Len(t, c.Styles(), 2, "previous lists survive a failed reload")
}

func TestCache_Close(t *testing.T) {
	loader := &fakeLoader{}
	c := New(loader, nil)
	require.True(t, c.Load(t.Context()).IsSuccess())

	c.Close()
	assert.False(t, c.Loaded())
	_, ok := c.Objective(1)
	assert.False(t, ok)

	require.True(t, c.Load(t.Context()).IsSuccess())
	assert.Equal(t, int32(2), loader.calls.Load())
}
