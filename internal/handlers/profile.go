package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gul251/nutrimate-backend/internal/models"
	"github.com/gul251/nutrimate-backend/internal/services"
)

// publishProfileSnapshot pushes a fresh profile snapshot to subscribers.
// Publish failures are logged, never surfaced to the request.
func publishProfileSnapshot(ctx context.Context, uid string) {
	profile, err := services.GetUserProfile(ctx, uid)
	if err != nil {
		log.Printf("WARNING: could not load profile snapshot for publish: %v", err)
		return
	}
	if err := services.PublishUpdateEvent(ctx, services.UpdateEvent{
		Type:   services.TopicProfile,
		UserID: uid,
		Data:   profile,
	}); err != nil {
		log.Printf("WARNING: failed to publish profile update: %v", err)
	}
}

// GetProfile returns the authenticated user's profile document.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := services.GetUserProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "No profile found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": profile,
	})
}

// UpdateProfile merges the provided fields into the profile. Omitted
// fields keep their stored values.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var update services.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := services.UpdateUserProfile(ctx, uid, update); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "No profile found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	publishProfileSnapshot(ctx, uid)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated successfully",
	})
}

// SaveGoals stores the calorie and protein targets.
func SaveGoals(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var goals models.Goals
	if err := json.NewDecoder(r.Body).Decode(&goals); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := services.SaveGoals(ctx, uid, goals); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "No profile found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save goals")
		return
	}

	publishProfileSnapshot(ctx, uid)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Goals saved successfully",
	})
}
