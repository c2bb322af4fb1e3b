package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gul251/nutrimate-backend/internal/models"
	"github.com/gul251/nutrimate-backend/internal/services"
)

// publishMealPlanSnapshot pushes the user's full meal-plan list to
// subscribers after a mutation.
func publishMealPlanSnapshot(ctx context.Context, uid string) {
	plans, err := services.GetMealPlans(ctx, uid, "")
	if err != nil {
		log.Printf("WARNING: could not load meal plan snapshot for publish: %v", err)
		return
	}
	if err := services.PublishUpdateEvent(ctx, services.UpdateEvent{
		Type:   services.TopicMealPlans,
		UserID: uid,
		Data:   plans,
	}); err != nil {
		log.Printf("WARNING: failed to publish meal plan update: %v", err)
	}
}

// AddMealPlan logs one meal against the authenticated user's plan.
func AddMealPlan(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var entry models.MealPlan
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		writeError(w, http.StatusBadRequest, "Meal name is required")
		return
	}
	if entry.Date == "" {
		entry.Date = time.Now().Format("2006-01-02")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := services.AddMealPlan(ctx, uid, entry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add meal")
		return
	}

	publishMealPlanSnapshot(ctx, uid)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Meal added successfully",
		"id":      id,
	})
}

// GetMealPlans lists the user's logged meals, optionally for one day
// via ?date=YYYY-MM-DD, newest first.
func GetMealPlans(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	plans, err := services.GetMealPlans(ctx, uid, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load meal plans")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"mealPlans": plans,
	})
}

// DeleteMealPlan removes one logged meal by ?id=. Unknown ids succeed.
func DeleteMealPlan(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Meal id is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := services.DeleteMealPlan(ctx, uid, id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete meal")
		return
	}

	publishMealPlanSnapshot(ctx, uid)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Meal deleted successfully",
	})
}
