package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/gul251/nutrimate-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/signout", handlers.Signout)
	r.Get("/api/auth/me", handlers.Me)

	// Profile routes
	r.Get("/api/profile", handlers.GetProfile)
	r.Put("/api/profile", handlers.UpdateProfile)
	r.Put("/api/profile/goals", handlers.SaveGoals)

	// Meal plan routes
	r.Post("/api/mealplans", handlers.AddMealPlan)
	r.Get("/api/mealplans", handlers.GetMealPlans)
	r.Delete("/api/mealplans", handlers.DeleteMealPlan)

	// Weight log routes (append-only)
	r.Post("/api/weightlogs", handlers.AddWeightLog)
	r.Get("/api/weightlogs", handlers.GetWeightLogs)

	// Favorites routes
	r.Post("/api/favorites", handlers.AddFavorite)
	r.Get("/api/favorites", handlers.GetFavorites)
	r.Delete("/api/favorites", handlers.RemoveFavorite)

	// Shared meals library (public, no session required)
	r.Get("/api/meals", handlers.GetPublicMeals)

	// AI routes
	r.Post("/api/ai/mealplan", handlers.GenerateMealPlan)
	r.Post("/api/ai/suggestion", handlers.GenerateSuggestion)
	r.Post("/api/ai/nutrition", handlers.AnalyzeNutrition)

	// Alternate SQL catalog backend (action-dispatch, independent of the
	// document store)
	r.Get("/api/catalog", handlers.Catalog)
	r.Post("/api/catalog", handlers.Catalog)

	// File upload routes
	r.Post("/api/upload", handlers.UploadImage)

	// WebSocket endpoint for live profile/meal-plan updates
	r.Get("/ws/updates", handlers.UpdatesWebSocket)
}
