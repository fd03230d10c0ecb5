package dispatch

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/krishisaarathi/internal/profile"
)

// RegisterRoutes mounts the query and recommendations endpoints.
func RegisterRoutes(r chi.Router, d *Dispatcher) {
	r.Post("/query", handleQuery(d))
	r.Get("/recommendations/{uid}", handleRecommendations(d))
}

func handleQuery(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q Query
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}

		answer, err := d.Handle(r.Context(), q)
		if err != nil {
			d.fail(w, "query", q.UID, err)
			return
		}
		writeJSON(w, http.StatusOK, answer)
	}
}

func handleRecommendations(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")

		recs, err := d.Recommendations(r.Context(), uid)
		if err != nil {
			d.fail(w, "recommendations", uid, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// fail maps a dispatch error onto a status code.
func (d *Dispatcher) fail(w http.ResponseWriter, op, uid string, err error) {
	switch {
	case errors.Is(err, ErrMissingUID):
		writeError(w, http.StatusBadRequest, "User ID is required", "")
	case errors.Is(err, ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "Either voice query or image is required", "")
	case errors.Is(err, ErrInvalidAudio):
		writeError(w, http.StatusBadRequest, "Invalid audio data", err.Error())
	case errors.Is(err, profile.ErrNotFound):
		writeError(w, http.StatusNotFound, "User profile not found", "")
	default:
		d.d.Logger.Error(op+" failed", zap.String("uid", uid), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
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
