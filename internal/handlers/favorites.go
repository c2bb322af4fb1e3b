package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gul251/nutrimate-backend/internal/models"
	"github.com/gul251/nutrimate-backend/internal/services"
)

// AddFavorite saves a meal to the user's favorites.
func AddFavorite(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var fav models.Favorite
	if err := json.NewDecoder(r.Body).Decode(&fav); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fav.Name = strings.TrimSpace(fav.Name)
	if fav.Name == "" {
		writeError(w, http.StatusBadRequest, "Meal name is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := services.AddFavorite(ctx, uid, fav)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save favorite")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Favorite saved successfully",
		"id":      id,
	})
}

// GetFavorites lists the user's saved meals, newest first.
func GetFavorites(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	favorites, err := services.GetFavorites(ctx, uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load favorites")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"favorites": favorites,
	})
}

// RemoveFavorite deletes one favorite by ?id=. Unknown ids succeed.
func RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Favorite id is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := services.RemoveFavorite(ctx, uid, id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove favorite")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Favorite removed successfully",
	})
}
