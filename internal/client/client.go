// Package client talks to the studio REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreman2200/ledstudio/internal/scene"
	"github.com/coreman2200/ledstudio/internal/store"
	"github.com/coreman2200/ledstudio/internal/studio"
)

// StatusError is a non-2xx reply. 404 and 423 unwrap to the store sentinels.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("studio: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("studio: %d %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return store.ErrNotFound
	case http.StatusLocked:
		return store.ErrLocked
	}
	return nil
}

type Client struct {
	base string
	http *http.Client
}

// New returns a client for the studio at base, e.g. http://localhost:5000.
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// LiveURL is the studio's live websocket endpoint.
func (c *Client) LiveURL() string {
	u := c.base
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws/live"
}

func (c *Client) ListScenes(ctx context.Context) ([]scene.Scene, error) {
	var out struct {
		Scenes []scene.Scene `json:"scenes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/scenes", nil, &out); err != nil {
		return nil, err
	}
	return out.Scenes, nil
}

func (c *Client) GetScene(ctx context.Context, id string) (scene.Scene, error) {
	var out struct {
		Scene scene.Scene `json:"scene"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/scenes/"+url.PathEscape(id), nil, &out); err != nil {
		return scene.Scene{}, err
	}
	out.Scene.Normalize()
	return out.Scene, nil
}

// CreateScene returns the id of a new default scene.
func (c *Client) CreateScene(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/scenes", struct{}{}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// PutScene overwrites the stored scene. It has the shape of a save.Func.
func (c *Client) PutScene(ctx context.Context, s scene.Scene) error {
	return c.do(ctx, http.MethodPut, "/api/scenes/"+url.PathEscape(s.ID), s, nil)
}

func (c *Client) DeleteScene(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/scenes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) LockScene(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/scenes/"+url.PathEscape(id)+"/lock", nil, nil)
}

func (c *Client) UnlockScene(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/scenes/"+url.PathEscape(id)+"/unlock", nil, nil)
}

func (c *Client) CopyScene(ctx context.Context, id string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/scenes/"+url.PathEscape(id)+"/copy", nil, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) PlayerState(ctx context.Context) (studio.State, error) {
	var st studio.State
	err := c.do(ctx, http.MethodGet, "/api/player", nil, &st)
	return st, err
}

// Play starts the scene on the strip. Without loop it plays once and holds
// the last frame.
func (c *Client) Play(ctx context.Context, sceneID string, loop bool) error {
	body := map[string]any{"sceneId": sceneID, "loop": loop}
	return c.do(ctx, http.MethodPost, "/api/player/play", body, nil)
}

func (c *Client) Stop(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/player/stop", struct{}{}, nil)
}

func (c *Client) ShowFrame(ctx context.Context, sceneID string, frame int) error {
	body := map[string]any{"sceneId": sceneID, "frameNum": frame}
	return c.do(ctx, http.MethodPost, "/api/player/show-frame", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &e) != nil {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
