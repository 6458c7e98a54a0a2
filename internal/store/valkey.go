package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"

	"github.com/coreman2200/ledstudio/internal/scene"
)

// DefaultValkeyKey is the hash holding every scene, field = id,
// value = scene JSON.
const DefaultValkeyKey = "ledstudio:scenes"

// Valkey stores scenes in one Valkey hash. Lock checks are read-then-write
// and not atomic across studio instances.
type Valkey struct {
	client valkey.Client
	key    string
}

// NewValkey connects to addr (host:port). An empty key uses
// DefaultValkeyKey.
func NewValkey(addr, key string) (*Valkey, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	if key == "" {
		key = DefaultValkeyKey
	}
	log.Info().Str("addr", addr).Str("key", key).Msg("valkey store ready")
	return &Valkey{client: client, key: key}, nil
}

func (v *Valkey) List(ctx context.Context) ([]scene.Scene, error) {
	all, err := v.client.Do(ctx, v.client.B().Hgetall().Key(v.key).Build()).AsStrMap()
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	out := make([]scene.Scene, 0, len(all))
	for id, raw := range all {
		s, err := decode(id, raw)
		if err != nil {
			log.Warn().Err(err).Str("scene", id).Msg("skipping unreadable scene")
			continue
		}
		out = append(out, s)
	}
	sortByID(out)
	return out, nil
}

func (v *Valkey) Get(ctx context.Context, id string) (scene.Scene, error) {
	raw, err := v.client.Do(ctx, v.client.B().Hget().Key(v.key).Field(id).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return scene.Scene{}, ErrNotFound
	}
	if err != nil {
		return scene.Scene{}, fmt.Errorf("get scene %s: %w", id, err)
	}
	return decode(id, raw)
}

func (v *Valkey) Create(ctx context.Context) (scene.Scene, error) {
	s := scene.New(newID())
	if err := v.write(ctx, s); err != nil {
		return scene.Scene{}, err
	}
	log.Info().Str("scene", s.ID).Msg("scene created")
	return s, nil
}

func (v *Valkey) Put(ctx context.Context, s scene.Scene) error {
	old, err := v.Get(ctx, s.ID)
	if err != nil {
		return err
	}
	if old.Locked {
		return ErrLocked
	}
	return v.write(ctx, prepare(s, s.ID, false))
}

func (v *Valkey) Delete(ctx context.Context, id string) error {
	old, err := v.Get(ctx, id)
	if err != nil {
		return err
	}
	if old.Locked {
		return ErrLocked
	}
	if err := v.client.Do(ctx, v.client.B().Hdel().Key(v.key).Field(id).Build()).Error(); err != nil {
		return fmt.Errorf("delete scene %s: %w", id, err)
	}
	log.Info().Str("scene", id).Msg("scene deleted")
	return nil
}

func (v *Valkey) Copy(ctx context.Context, id string) (scene.Scene, error) {
	old, err := v.Get(ctx, id)
	if err != nil {
		return scene.Scene{}, err
	}
	c := prepare(old, newID(), false)
	if err := v.write(ctx, c); err != nil {
		return scene.Scene{}, err
	}
	return c, nil
}

func (v *Valkey) SetLocked(ctx context.Context, id string, locked bool) error {
	s, err := v.Get(ctx, id)
	if err != nil {
		return err
	}
	s.Locked = locked
	return v.write(ctx, s)
}

func (v *Valkey) Close() error {
	v.client.Close()
	return nil
}

func (v *Valkey) write(ctx context.Context, s scene.Scene) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode scene %s: %w", s.ID, err)
	}
	cmd := v.client.B().Hset().Key(v.key).FieldValue().FieldValue(s.ID, string(b)).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("write scene %s: %w", s.ID, err)
	}
	return nil
}

func decode(id, raw string) (scene.Scene, error) {
	var s scene.Scene
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return scene.Scene{}, fmt.Errorf("decode scene %s: %w", id, err)
	}
	s.ID = id
	s.Normalize()
	return s, nil
}
