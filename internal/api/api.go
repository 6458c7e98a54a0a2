// Package api serves the studio REST surface: scene CRUD and the player.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstudio/internal/scene"
	"github.com/coreman2200/ledstudio/internal/sequence"
	"github.com/coreman2200/ledstudio/internal/store"
	"github.com/coreman2200/ledstudio/internal/studio"
)

// Player is the part of studio.Player the handlers drive.
type Player interface {
	Play(s scene.Scene, loop bool) error
	Pause() bool
	Resume() bool
	Stop() error
	ShowFrame(s scene.Scene, n int) error
	State() studio.State
}

type Handler struct {
	Store  store.Store
	Player Player
}

func (h *Handler) ListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if scenes == nil {
		scenes = []scene.Scene{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenes": scenes})
}

func (h *Handler) GetScene(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scene": s})
}

// CreateScene ignores any body; new scenes always start from the defaults.
func (h *Handler) CreateScene(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": s.ID})
}

// UpdateScene overwrites the whole scene. The id in the path wins over the
// one in the body.
func (h *Handler) UpdateScene(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var s scene.Scene
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeBadRequest(w, "invalid scene body", err)
		return
	}
	s.ID = id
	if err := h.Store.Put(r.Context(), s); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *Handler) DeleteScene(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) LockScene(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, true)
}

func (h *Handler) UnlockScene(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, false)
}

func (h *Handler) setLocked(w http.ResponseWriter, r *http.Request, locked bool) {
	id := mux.Vars(r)["id"]
	if err := h.Store.SetLocked(r.Context(), id, locked); err != nil {
		writeError(w, err)
		return
	}
	log.Info().Str("scene", id).Bool("locked", locked).Msg("scene lock changed")
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) CopyScene(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.Copy(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": c.ID})
}

func (h *Handler) PlayerState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Player.State())
}

type playRequest struct {
	SceneID string `json:"sceneId"`
	// Loop defaults to true; false plays once and holds the last frame.
	Loop *bool `json:"loop"`
}

type showFrameRequest struct {
	SceneID  string `json:"sceneId"`
	FrameNum *int   `json:"frameNum"`
}

func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid play body", err)
		return
	}
	s, err := h.Store.Get(r.Context(), req.SceneID)
	if err != nil {
		writeError(w, err)
		return
	}
	loop := req.Loop == nil || *req.Loop
	if err := h.Player.Play(s, loop); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) PausePlayer(w http.ResponseWriter, r *http.Request) {
	if !h.Player.Pause() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Player is not playing"})
		return
	}
	writeJSON(w, http.StatusOK, h.Player.State())
}

func (h *Handler) ResumePlayer(w http.ResponseWriter, r *http.Request) {
	if !h.Player.Resume() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Player is not paused"})
		return
	}
	writeJSON(w, http.StatusOK, h.Player.State())
}

func (h *Handler) StopPlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.Player.Stop(); err != nil {
		// The player is idle even when the blanking write failed.
		log.Warn().Err(err).Msg("stop")
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) ShowFrame(w http.ResponseWriter, r *http.Request) {
	var req showFrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid show-frame body", err)
		return
	}
	if req.FrameNum == nil {
		writeBadRequest(w, "frameNum is required", nil)
		return
	}
	s, err := h.Store.Get(r.Context(), req.SceneID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Player.ShowFrame(s, *req.FrameNum); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

func writeBadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		log.Debug().Err(err).Msg(msg)
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps store and player errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Scene not found"})
	case errors.Is(err, store.ErrLocked):
		writeJSON(w, http.StatusLocked, map[string]string{"error": "Scene is locked"})
	case errors.Is(err, studio.ErrFrameRange), errors.Is(err, sequence.ErrNoFrames):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
