package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledstudio/internal/led"
	"github.com/coreman2200/ledstudio/internal/ledcolor"
	"github.com/coreman2200/ledstudio/internal/scene"
	"github.com/coreman2200/ledstudio/internal/store"
	"github.com/coreman2200/ledstudio/internal/studio"
)

type fixture struct {
	srv    *httptest.Server
	store  *store.Memory
	player *studio.Player
	sim    *led.Sim
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: store.NewMemory(), sim: led.NewSim(2)}
	f.player = studio.New(f.sim, studio.Options{Count: 2})
	t.Cleanup(func() { f.player.Close() })

	r := mux.NewRouter()
	Register(r, &Handler{Store: f.store, Player: f.player})
	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	return resp, got
}

func TestSceneLifecycle(t *testing.T) {
	f := newFixture(t)

	resp, got := f.do(t, http.MethodPost, "/api/scenes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id, _ := got["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	_, got = f.do(t, http.MethodGet, "/api/scenes/"+id, nil)
	sc := got["scene"].(map[string]any)
	assert.Equal(t, scene.DefaultName, sc["name"])
	assert.Equal(t, float64(scene.DefaultFPS), sc["fps"])
	assert.Equal(t, float64(scene.DefaultBrightness), sc["brightness"])

	edited := scene.New("")
	edited.Name = "Porch"
	edited.Frames[0].Set("1", ledcolor.Red)
	resp, got = f.do(t, http.MethodPut, "/api/scenes/"+id, edited)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, got["id"])

	stored, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Porch", stored.Name)
	assert.Equal(t, id, stored.ID, "path id wins")

	resp, got = f.do(t, http.MethodPost, "/api/scenes/"+id+"/copy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	copyID := got["id"].(string)
	assert.NotEqual(t, id, copyID)

	_, got = f.do(t, http.MethodGet, "/api/scenes", nil)
	assert.Len(t, got["scenes"], 2)

	resp, got = f.do(t, http.MethodDelete, "/api/scenes/"+copyID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, got)

	resp, got = f.do(t, http.MethodGet, "/api/scenes/"+copyID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Scene not found", got["error"])
}

func TestEmptyListIsAnArray(t *testing.T) {
	f := newFixture(t)
	_, got := f.do(t, http.MethodGet, "/api/scenes", nil)
	assert.Equal(t, []any{}, got["scenes"])
}

func TestLockedScene(t *testing.T) {
	f := newFixture(t)
	s, err := f.store.Create(context.Background())
	require.NoError(t, err)

	resp, got := f.do(t, http.MethodPost, "/api/scenes/"+s.ID+"/lock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, got)

	resp, _ = f.do(t, http.MethodPut, "/api/scenes/"+s.ID, s)
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
	resp, _ = f.do(t, http.MethodDelete, "/api/scenes/"+s.ID, nil)
	assert.Equal(t, http.StatusLocked, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/scenes/"+s.ID+"/unlock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodDelete, "/api/scenes/"+s.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBadBodies(t *testing.T) {
	f := newFixture(t)
	s, err := f.store.Create(context.Background())
	require.NoError(t, err)

	cases := []struct {
		name, method, path string
		body               any
		status             int
	}{
		{"put garbage", http.MethodPut, "/api/scenes/" + s.ID, "{", http.StatusBadRequest},
		{"play garbage", http.MethodPost, "/api/player/play", "nope", http.StatusBadRequest},
		{"show-frame without frame", http.MethodPost, "/api/player/show-frame", map[string]any{"sceneId": s.ID}, http.StatusBadRequest},
		{"show-frame out of range", http.MethodPost, "/api/player/show-frame", map[string]any{"sceneId": s.ID, "frameNum": 4}, http.StatusBadRequest},
		{"play unknown", http.MethodPost, "/api/player/play", map[string]any{"sceneId": "missing"}, http.StatusNotFound},
		{"lock unknown", http.MethodPost, "/api/scenes/missing/lock", nil, http.StatusNotFound},
		{"copy unknown", http.MethodPost, "/api/scenes/missing/copy", nil, http.StatusNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp, got := f.do(t, c.method, c.path, c.body)
			assert.Equal(t, c.status, resp.StatusCode)
			assert.NotEmpty(t, got["error"])
		})
	}
}

func TestPlayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.store.Create(ctx)
	require.NoError(t, err)
	s.Brightness = 100
	s.Frames[0].Set("0", ledcolor.Blue)
	require.NoError(t, f.store.Put(ctx, s))

	_, got := f.do(t, http.MethodGet, "/api/player", nil)
	assert.Equal(t, false, got["isPlaying"])
	assert.Nil(t, got["sceneId"])
	assert.Nil(t, got["scene"])

	resp, _ := f.do(t, http.MethodPost, "/api/player/show-frame", map[string]any{"sceneId": s.ID, "frameNum": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte{0, 0, 255, 0, 0, 0}, f.sim.Last())

	resp, _ = f.do(t, http.MethodPost, "/api/player/play", map[string]any{"sceneId": s.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, got = f.do(t, http.MethodGet, "/api/player", nil)
	assert.Equal(t, true, got["isPlaying"])
	assert.Equal(t, s.ID, got["sceneId"])
	assert.Equal(t, s.ID, got["scene"].(map[string]any)["id"])

	resp, got = f.do(t, http.MethodPost, "/api/player/resume", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "not paused")
	resp, got = f.do(t, http.MethodPost, "/api/player/pause", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, got["isPaused"])
	resp, got = f.do(t, http.MethodPost, "/api/player/pause", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.NotEmpty(t, got["error"])
	resp, got = f.do(t, http.MethodPost, "/api/player/resume", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, got["isPaused"])

	resp, got = f.do(t, http.MethodPost, "/api/player/stop", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, got)
	assert.False(t, f.player.State().IsPlaying)
	assert.Equal(t, make([]byte, 6), f.sim.Last())
}

func TestPlayOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.store.Create(ctx)
	require.NoError(t, err)
	s.Brightness = 100
	s.FPS = 100
	s.Frames[0].Set("0", ledcolor.Blue)
	s.Frames = append(s.Frames, scene.BlankFrame())
	s.Frames[1].Set("1", ledcolor.Red)
	require.NoError(t, f.store.Put(ctx, s))

	resp, _ := f.do(t, http.MethodPost, "/api/player/play", map[string]any{"sceneId": s.ID, "loop": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Eventually(t, func() bool { return !f.player.State().IsPlaying }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []byte{0, 0, 0, 255, 0, 0}, f.sim.Last(), "last frame stays shown")

	resp, _ = f.do(t, http.MethodPost, "/api/player/pause", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPreflight(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/scenes/abc", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Methods"))
}
