package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstudio/internal/scene"
)

// Memory manages scenes in a map. Scenes are copied on the way in and out.
type Memory struct {
	mu     sync.RWMutex
	scenes map[string]scene.Scene
}

func NewMemory() *Memory {
	return &Memory{scenes: make(map[string]scene.Scene)}
}

func (m *Memory) List(_ context.Context) ([]scene.Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]scene.Scene, 0, len(m.scenes))
	for _, s := range m.scenes {
		out = append(out, s.Clone())
	}
	sortByID(out)
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (scene.Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scenes[id]
	if !ok {
		return scene.Scene{}, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *Memory) Create(_ context.Context) (scene.Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := scene.New(newID())
	m.scenes[s.ID] = s
	log.Info().Str("scene", s.ID).Msg("scene created")
	return s.Clone(), nil
}

func (m *Memory) Put(_ context.Context, s scene.Scene) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.scenes[s.ID]
	if !ok {
		return ErrNotFound
	}
	if old.Locked {
		return ErrLocked
	}
	m.scenes[s.ID] = prepare(s, s.ID, false)
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.scenes[id]
	if !ok {
		return ErrNotFound
	}
	if old.Locked {
		return ErrLocked
	}
	delete(m.scenes, id)
	log.Info().Str("scene", id).Msg("scene deleted")
	return nil
}

func (m *Memory) Copy(_ context.Context, id string) (scene.Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.scenes[id]
	if !ok {
		return scene.Scene{}, ErrNotFound
	}
	c := prepare(old, newID(), false)
	m.scenes[c.ID] = c
	return c.Clone(), nil
}

func (m *Memory) SetLocked(_ context.Context, id string, locked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scenes[id]
	if !ok {
		return ErrNotFound
	}
	s.Locked = locked
	m.scenes[id] = s
	return nil
}

func (m *Memory) Close() error { return nil }
