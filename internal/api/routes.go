package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register mounts the scene and player routes on r.
func Register(r *mux.Router, h *Handler) {
	r.Use(CORS)

	api := r.PathPrefix("/api").Subrouter()
	api.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	api.HandleFunc("/scenes", h.ListScenes).Methods(http.MethodGet)
	api.HandleFunc("/scenes", h.CreateScene).Methods(http.MethodPost)
	api.HandleFunc("/scenes/{id}", h.GetScene).Methods(http.MethodGet)
	api.HandleFunc("/scenes/{id}", h.UpdateScene).Methods(http.MethodPut)
	api.HandleFunc("/scenes/{id}", h.DeleteScene).Methods(http.MethodDelete)
	api.HandleFunc("/scenes/{id}/lock", h.LockScene).Methods(http.MethodPost)
	api.HandleFunc("/scenes/{id}/unlock", h.UnlockScene).Methods(http.MethodPost)
	api.HandleFunc("/scenes/{id}/copy", h.CopyScene).Methods(http.MethodPost)

	api.HandleFunc("/player", h.PlayerState).Methods(http.MethodGet)
	api.HandleFunc("/player/play", h.Play).Methods(http.MethodPost)
	api.HandleFunc("/player/pause", h.PausePlayer).Methods(http.MethodPost)
	api.HandleFunc("/player/resume", h.ResumePlayer).Methods(http.MethodPost)
	api.HandleFunc("/player/stop", h.StopPlayer).Methods(http.MethodPost)
	api.HandleFunc("/player/show-frame", h.ShowFrame).Methods(http.MethodPost)
}

// CORS allows any origin, header and method.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
