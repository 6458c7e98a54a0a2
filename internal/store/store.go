// Package store keeps scenes. Every write stores the whole document.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/coreman2200/ledstudio/internal/scene"
)

var (
	ErrNotFound = errors.New("scene not found")
	ErrLocked   = errors.New("scene is locked")
)

type Store interface {
	// List returns every scene in creation order.
	List(ctx context.Context) ([]scene.Scene, error)
	Get(ctx context.Context, id string) (scene.Scene, error)
	// Create stores a new scene with the studio defaults.
	Create(ctx context.Context) (scene.Scene, error)
	// Put overwrites an existing scene. The stored lock flag is kept.
	Put(ctx context.Context, s scene.Scene) error
	Delete(ctx context.Context, id string) error
	// Copy stores a duplicate under a new id, unlocked.
	Copy(ctx context.Context, id string) (scene.Scene, error)
	SetLocked(ctx context.Context, id string, locked bool) error
	Close() error
}

// newID returns a time-ordered id so sorting ids sorts by creation.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func sortByID(scenes []scene.Scene) {
	slices.SortFunc(scenes, func(a, b scene.Scene) int {
		return strings.Compare(a.ID, b.ID)
	})
}

// prepare readies an incoming document for storage.
func prepare(s scene.Scene, id string, locked bool) scene.Scene {
	c := s.Clone()
	c.ID = id
	c.Locked = locked
	c.Normalize()
	return c
}
