package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gul251/nutrimate-backend/internal/services"
)

type weightLogRequest struct {
	Weight float64 `json:"weight"`
	Date   string  `json:"date"`
}

// AddWeightLog appends one weight measurement. Logs are append-only;
// there is no edit or delete.
func AddWeightLog(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req weightLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Weight <= 0 {
		writeError(w, http.StatusBadRequest, "Weight must be a positive number")
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := services.AddWeightLog(ctx, uid, req.Weight, req.Date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to log weight")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Weight logged successfully",
		"id":      id,
	})
}

// GetWeightLogs lists recent measurements, newest date first. ?limit=
// caps the count, defaulting to 30.
func GetWeightLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logs, err := services.GetWeightLogs(ctx, uid, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load weight logs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"weightLogs": logs,
	})
}
