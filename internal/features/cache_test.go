package features

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu    sync.Mutex
	flags map[string]map[string]bool
	err   error
	calls int
}

func (s *stubSource) EnabledByGuild(context.Context) (map[string]map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.flags, nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestIsEnabledBeforeFirstRefresh(t *testing.T) {
	cache := NewCache(&stubSource{}, clockwork.NewFakeClock())
	assert.False(t, cache.IsEnabled("123", KeyTwitch))
}

func TestRefreshReplacesView(t *testing.T) {
	source := &stubSource{flags: map[string]map[string]bool{
		"123": {KeyTwitch: true, KeyAI: true},
	}}
	cache := NewCache(source, clockwork.NewFakeClock())

	require.NoError(t, cache.Refresh(context.Background(), "startup"))
	assert.True(t, cache.IsEnabled("123", KeyTwitch))
	assert.True(t, cache.IsEnabled("123", KeyAI))
	assert.False(t, cache.IsEnabled("123", KeyYouTube))
	assert.False(t, cache.IsEnabled("456", KeyTwitch))

	source.mu.Lock()
	source.flags = map[string]map[string]bool{"456": {KeyYouTube: true}}
	source.mu.Unlock()

	require.NoError(t, cache.Refresh(context.Background(), "pubsub"))
	assert.False(t, cache.IsEnabled("123", KeyTwitch))
	assert.True(t, cache.IsEnabled("456", KeyYouTube))
}

func TestGlobalFlagAppliesToEveryGuild(t *testing.T) {
	source := &stubSource{flags: map[string]map[string]bool{
		GlobalScope: {KeyTwitch: true},
		"123":       {KeyAI: true},
	}}
	cache := NewCache(source, clockwork.NewFakeClock())
	require.NoError(t, cache.Refresh(context.Background(), "startup"))

	assert.True(t, cache.IsEnabled("123", KeyTwitch))
	assert.True(t, cache.IsEnabled("456", KeyTwitch))
	assert.True(t, cache.IsEnabled("123", KeyAI))
	assert.False(t, cache.IsEnabled("456", KeyAI))
}

func TestGlobalFlagUnderZeroGuildID(t *testing.T) {
	source := &stubSource{flags: map[string]map[string]bool{
		"0": {KeyYouTube: true},
	}}
	cache := NewCache(source, clockwork.NewFakeClock())
	require.NoError(t, cache.Refresh(context.Background(), "startup"))

	assert.True(t, cache.IsEnabled("123", KeyYouTube))
	assert.False(t, cache.IsEnabled("123", KeyTwitch))
}

func TestRefreshKeepsOldViewOnError(t *testing.T) {
	source := &stubSource{flags: map[string]map[string]bool{"123": {KeyTwitch: true}}}
	cache := NewCache(source, clockwork.NewFakeClock())
	require.NoError(t, cache.Refresh(context.Background(), "startup"))

	source.mu.Lock()
	source.err = errors.New("db down")
	source.mu.Unlock()

	require.Error(t, cache.Refresh(context.Background(), "interval"))
	assert.True(t, cache.IsEnabled("123", KeyTwitch))
}

func TestRunRefreshesOnTick(t *testing.T) {
	source := &stubSource{flags: map[string]map[string]bool{}}
	clock := clockwork.NewFakeClock()
	cache := NewCache(source, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		cache.Run(ctx)
		close(done)
	}()

	clock.BlockUntil(1)
	clock.Advance(defaultRefreshInterval)

	require.Eventually(t, func() bool {
		return source.callCount() >= 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
