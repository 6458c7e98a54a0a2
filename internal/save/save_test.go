package save

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledstudio/internal/scene"
)

type recorder struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (r *recorder) save(_ context.Context, s scene.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, s.Name)
	return r.err
}

func (r *recorder) saved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func named(name string) scene.Scene {
	s := scene.New("s1")
	s.Name = name
	return s
}

func TestLeadingAndTrailingSave(t *testing.T) {
	r := &recorder{}
	sv := New(r.save, 50*time.Millisecond)

	sv.Submit(named("a"))
	require.Eventually(t, func() bool { return len(r.saved()) == 1 }, time.Second, time.Millisecond)

	sv.Submit(named("b"))
	sv.Submit(named("c"))
	assert.True(t, sv.Pending())

	require.Eventually(t, func() bool { return len(r.saved()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"a", "c"}, r.saved(), "burst collapses to the newest scene")
	assert.False(t, sv.Pending())
	assert.False(t, sv.LastSaved().IsZero())
}

func TestFlushSavesPendingNow(t *testing.T) {
	r := &recorder{}
	sv := New(r.save, time.Hour)

	sv.Submit(named("a"))
	sv.Submit(named("b"))
	require.NoError(t, sv.Flush(context.Background()))

	assert.Equal(t, []string{"a", "b"}, r.saved())
	assert.False(t, sv.Pending())

	require.NoError(t, sv.Flush(context.Background()), "flush with nothing pending")
	assert.Len(t, r.saved(), 2)
}

func TestSaveErrorIsReported(t *testing.T) {
	boom := errors.New("offline")
	r := &recorder{err: boom}
	sv := New(r.save, time.Hour)

	sv.Submit(named("a"))
	sv.Submit(named("b"))
	assert.ErrorIs(t, sv.Flush(context.Background()), boom)
	assert.ErrorIs(t, sv.Err(), boom)
	assert.True(t, sv.LastSaved().IsZero())
}

func TestCloseFlushesAndRejects(t *testing.T) {
	r := &recorder{}
	sv := New(r.save, time.Hour)

	sv.Submit(named("a"))
	sv.Submit(named("b"))
	require.NoError(t, sv.Close(context.Background()))
	sv.Submit(named("c"))

	assert.Equal(t, []string{"a", "b"}, r.saved())
}
