package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gul251/nutrimate-backend/internal/database"
	"github.com/gul251/nutrimate-backend/internal/models"
)

// Catalog is the alternate SQL backend's single endpoint. Every request
// names an action via the ?action= query parameter. Mutations answer with
// a {status: "success"|"error"} body; fetch_meals returns a bare array and
// load_profile a bare row, matching the clients written against this
// contract. It shares nothing with the document store: same-named fields
// are never synchronized between the two.
func Catalog(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "save_profile":
		catalogSaveProfile(w, r)
	case "load_profile":
		catalogLoadProfile(w, r)
	case "add_meal":
		catalogAddMeal(w, r)
	case "fetch_meals":
		catalogFetchMeals(w, r)
	case "delete_meal":
		catalogDeleteMeal(w, r)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status":  "error",
			"message": "Invalid action",
		})
	}
}

func catalogError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
	})
}

// catalogSaveProfile upserts the single profile row. A user_id (or id) in
// the body decides between insert and update.
func catalogSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		models.CatalogProfile
		UserID int `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		catalogError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile := req.CatalogProfile
	if req.UserID > 0 {
		profile.ID = req.UserID
	}

	if strings.TrimSpace(profile.Name) == "" {
		catalogError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if profile.ID > 0 {
		_, err := database.PostgresDB.Exec(`
			UPDATE users SET name = $1, age = $2, height = $3, weight = $4,
				activity = $5, diet = $6, gender = $7
			WHERE id = $8`,
			profile.Name, profile.Age, profile.Height, profile.Weight,
			profile.Activity, profile.Diet, profile.Gender, profile.ID)
		if err != nil {
			log.Printf("ERROR: catalog profile update failed: %v", err)
			catalogError(w, http.StatusInternalServerError, "Failed to save profile")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "success",
			"user_id": profile.ID,
		})
		return
	}

	var id int
	err := database.PostgresDB.QueryRow(`
		INSERT INTO users (name, age, height, weight, activity, diet, gender)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		profile.Name, profile.Age, profile.Height, profile.Weight,
		profile.Activity, profile.Diet, profile.Gender).Scan(&id)
	if err != nil {
		log.Printf("ERROR: catalog profile insert failed: %v", err)
		catalogError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"user_id": id,
	})
}

// catalogLoadProfile returns one profile row by ?user_id= (or ?id=), or
// the most recent row when neither is given. The row comes back bare.
func catalogLoadProfile(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		raw = r.URL.Query().Get("id")
	}

	var row *sql.Row
	if raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			catalogError(w, http.StatusBadRequest, "Invalid id")
			return
		}
		row = database.PostgresDB.QueryRow(`
			SELECT id, name, age, height, weight, activity, diet, gender
			FROM users WHERE id = $1`, id)
	} else {
		row = database.PostgresDB.QueryRow(`
			SELECT id, name, age, height, weight, activity, diet, gender
			FROM users ORDER BY id DESC LIMIT 1`)
	}

	var profile models.CatalogProfile
	err := row.Scan(&profile.ID, &profile.Name, &profile.Age, &profile.Height,
		&profile.Weight, &profile.Activity, &profile.Diet, &profile.Gender)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			catalogError(w, http.StatusNotFound, "Profile not found")
			return
		}
		log.Printf("ERROR: catalog profile load failed: %v", err)
		catalogError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// catalogAddMeal inserts a meal row and returns its generated id.
func catalogAddMeal(w http.ResponseWriter, r *http.Request) {
	var meal models.CatalogMeal
	if err := json.NewDecoder(r.Body).Decode(&meal); err != nil {
		catalogError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(meal.Name) == "" {
		catalogError(w, http.StatusBadRequest, "Meal name is required")
		return
	}

	var id int
	err := database.PostgresDB.QueryRow(`
		INSERT INTO meals (name, cal, protein, price, img)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		meal.Name, meal.Calories, meal.Protein, meal.Price, meal.Image).Scan(&id)
	if err != nil {
		log.Printf("ERROR: catalog meal insert failed: %v", err)
		catalogError(w, http.StatusInternalServerError, "Failed to add meal")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"meal_id": id,
	})
}

// catalogFetchMeals lists all meal rows, newest insert first, as a bare
// array.
func catalogFetchMeals(w http.ResponseWriter, r *http.Request) {
	rows, err := database.PostgresDB.Query(`
		SELECT id, name, cal, protein, price, COALESCE(img, '')
		FROM meals ORDER BY id DESC`)
	if err != nil {
		log.Printf("ERROR: catalog meal fetch failed: %v", err)
		catalogError(w, http.StatusInternalServerError, "Failed to fetch meals")
		return
	}
	defer rows.Close()

	meals := []models.CatalogMeal{}
	for rows.Next() {
		var meal models.CatalogMeal
		if err := rows.Scan(&meal.ID, &meal.Name, &meal.Calories,
			&meal.Protein, &meal.Price, &meal.Image); err != nil {
			log.Printf("ERROR: catalog meal scan failed: %v", err)
			catalogError(w, http.StatusInternalServerError, "Failed to fetch meals")
			return
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		catalogError(w, http.StatusInternalServerError, "Failed to fetch meals")
		return
	}

	writeJSON(w, http.StatusOK, meals)
}

// catalogDeleteMeal removes one meal row. The id comes from the JSON body
// ("meal_id", or "id") or the ?id= query parameter. Deleting a nonexistent
// id still succeeds.
func catalogDeleteMeal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MealID int `json:"meal_id"`
		ID     int `json:"id"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}

	id := body.MealID
	if id <= 0 {
		id = body.ID
	}
	if id <= 0 {
		if parsed, err := strconv.Atoi(r.URL.Query().Get("id")); err == nil {
			id = parsed
		}
	}
	if id <= 0 {
		catalogError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if _, err := database.PostgresDB.Exec(`DELETE FROM meals WHERE id = $1`, id); err != nil {
		log.Printf("ERROR: catalog meal delete failed: %v", err)
		catalogError(w, http.StatusInternalServerError, "Failed to delete meal")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Meal deleted",
	})
}
