// Package api exposes the recommendation engine over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/merchanha/crossfit-routines/internal/features"
	"github.com/merchanha/crossfit-routines/internal/recommend"
	"github.com/merchanha/crossfit-routines/internal/scoring"
	"github.com/merchanha/crossfit-routines/internal/storage"
)

// Recommender abstracts the recommendation pipeline for the API layer.
type Recommender interface {
	Generate(ctx context.Context, userID string) (recommend.Response, error)
}

type RecommendationRequest struct {
	UserID string `json:"user_id"`
}

type AppDeps struct {
	Store       *storage.Store
	Recommender Recommender
	Models      recommend.ModelSource
	Token       string // optional; when set, debug routes require bearer auth
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/", handleIndex())
	r.Get("/health", handleHealth(deps))
	r.Post("/recommendations", handleRecommendations(deps))

	r.Route("/debug", func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}
		r.Get("/{user_id}", handleDebugUser(deps))
	})

	return r
}

func handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"service": "workout recommendation engine",
			"status":  "running",
		})
	}
}

func handleHealth(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trained := scoring.UseModel(deps.Models.Current())

		if err := deps.Store.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{
				"status":        "unhealthy",
				"database":      err.Error(),
				"model_trained": trained,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":        "healthy",
			"database":      "ok",
			"model_trained": trained,
		})
	}
}

func handleRecommendations(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req RecommendationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.UserID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "user_id is required")
			return
		}

		resp, err := deps.Recommender.Generate(r.Context(), req.UserID)
		if errors.Is(err, recommend.ErrInvalidUserID) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid user id: %q", req.UserID)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to generate recommendations: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleDebugUser(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "user_id")
		if _, err := uuid.Parse(userID); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid user id: %q", userID)
			return
		}

		history, err := deps.Store.FetchWorkoutHistory(r.Context(), userID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch workout history: %v", err)
			return
		}
		routines, err := deps.Store.FetchRoutines(r.Context(), userID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch routines: %v", err)
			return
		}

		v := features.Extract(history, routines)

		sample := history
		if len(sample) > 5 {
			sample = sample[:5]
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"user_id":         userID,
			"workout_count":   len(history),
			"routine_count":   len(routines),
			"features":        v,
			"recent_workouts": sample,
			"model_trained":   scoring.UseModel(deps.Models.Current()),
		})
	}
}
