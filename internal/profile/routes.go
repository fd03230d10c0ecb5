package profile

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the profile endpoints on the given router.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/users", handleCreate(svc))
	r.Get("/users/{uid}", handleGet(svc))
	r.Patch("/users/{uid}", handlePatch(svc))
}

type createRequest struct {
	UID         string         `json:"uid"`
	ProfileData map[string]any `json:"profileData"`
}

func handleCreate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		if strings.TrimSpace(req.UID) == "" {
			writeError(w, http.StatusBadRequest, "User ID is required", "")
			return
		}

		p, err := svc.Create(r.Context(), req.UID, req.ProfileData)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create user", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "User created successfully",
			"uid":     req.UID,
			"profile": p,
		})
	}
}

func handleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")

		p, found, err := svc.Fetch(r.Context(), uid)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get user", err.Error())
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "User not found", "")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"uid": uid, "profile": p})
	}
}

func handlePatch(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")

		var patch Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}

		p, err := svc.Update(r.Context(), uid, patch)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found", "")
			return
		case err != nil:
			writeError(w, http.StatusBadRequest, "Failed to update user", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Profile updated successfully",
			"uid":     uid,
			"profile": p,
		})
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
