package interactions

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// MaxLimit caps the history page size.
const MaxLimit = 100

// RegisterRoutes mounts the history and stats endpoints on the given router.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/users/{uid}/interactions", handleRecent(store))
	r.Get("/users/{uid}/stats", handleStats(store))
}

func handleRecent(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")

		limit := DefaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "Invalid limit", v)
				return
			}
			limit = min(n, MaxLimit)
		}

		entries, err := store.Recent(r.Context(), uid, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"uid": uid, "interactions": entries})
	}
}

func handleStats(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Stats(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	body := map[string]string{"error": msg}
	if detail != "" {
		body["message"] = detail
	}
	writeJSON(w, status, body)
}
