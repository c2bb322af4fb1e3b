package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gul251/nutrimate-backend/internal/services"
)

// GetPublicMeals lists the shared meals library. No session required.
func GetPublicMeals(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	meals, err := services.GetPublicMeals(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load meals")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"meals":   meals,
	})
}
