package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gul251/nutrimate-backend/internal/models"
	"github.com/gul251/nutrimate-backend/internal/services"
)

var geminiService *services.GeminiService

// InitGeminiService wires the AI client at startup.
func InitGeminiService(apiKey, model string) {
	geminiService = services.NewGeminiService(apiKey, model)
}

func writeAIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAPIKeyMissing):
		writeError(w, http.StatusServiceUnavailable, "AI features are not configured. Add a Gemini API key to enable them.")
	case errors.Is(err, services.ErrEmptyResponse):
		writeError(w, http.StatusBadGateway, "The AI did not return a response. Please try again.")
	default:
		writeError(w, http.StatusBadGateway, "AI request failed. Please try again.")
	}
}

// loadProfileOrDefaults fetches the profile for prompt building. A missing
// profile is not fatal; prompts fall back to sensible defaults.
func loadProfileOrDefaults(ctx context.Context, uid string) models.UserProfile {
	profile, err := services.GetUserProfile(ctx, uid)
	if err != nil || profile == nil {
		return models.UserProfile{}
	}
	return *profile
}

// GenerateMealPlan asks the AI for a 1-day plan built from the user's
// profile. The reply is returned raw plus an HTML rendering.
func GenerateMealPlan(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	profile := loadProfileOrDefaults(ctx, uid)

	plan, err := geminiService.GenerateMealPlan(ctx, profile)
	if err != nil {
		writeAIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"mealPlan": plan,
		"html":     services.FormatMealPlan(plan),
	})
}

type suggestionRequest struct {
	MealType string `json:"mealType"`
}

// GenerateSuggestion asks the AI for quick options for one meal type.
func GenerateSuggestion(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	profile := loadProfileOrDefaults(ctx, uid)

	suggestion, err := geminiService.GenerateQuickSuggestion(ctx, req.MealType, profile)
	if err != nil {
		writeAIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"suggestion": suggestion,
	})
}

type nutritionRequest struct {
	Name string `json:"name"`
}

// AnalyzeNutrition asks the AI for a nutritional estimate of one meal.
// An unparseable reply comes back as zeroes rather than an error.
func AnalyzeNutrition(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(r); !ok {
		writeUnauthenticated(w)
		return
	}

	var req nutritionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Meal name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	nutrition, err := geminiService.AnalyzeMealNutrition(ctx, req.Name)
	if err != nil {
		writeAIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"nutrition": nutrition,
	})
}
