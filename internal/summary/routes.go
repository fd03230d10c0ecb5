package summary

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/krishisaarathi/internal/profile"
	"github.com/ziadkadry99/krishisaarathi/internal/speech"
)

// RegisterRoutes mounts the daily summary endpoints.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/users/{uid}/summary", handleGenerate(svc))
	r.Get("/users/{uid}/summary", handleToday(svc))
}

type generateRequest struct {
	Voice string `json:"voice"`
}

func handleGenerate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")

		var req generateRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
				return
			}
		}

		rec, err := svc.Generate(r.Context(), uid, speech.ParseGender(req.Voice))
		switch {
		case errors.Is(err, profile.ErrNotFound):
			writeError(w, http.StatusNotFound, "User profile not found", "")
			return
		case err != nil:
			svc.logger.Error("daily summary failed", zap.String("uid", uid), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleToday(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, found, err := svc.Today(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "No summary for today", "")
			return
		}
		writeJSON(w, http.StatusOK, rec)
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
