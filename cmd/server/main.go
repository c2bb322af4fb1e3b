package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/gul251/nutrimate-backend/internal/config"
	"github.com/gul251/nutrimate-backend/internal/database"
	"github.com/gul251/nutrimate-backend/internal/handlers"
	"github.com/gul251/nutrimate-backend/internal/middleware"
	"github.com/gul251/nutrimate-backend/internal/routes"
	"github.com/gul251/nutrimate-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	// Connect to PostgreSQL (alternate catalog backend)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis (sessions, rate limiting, update fan-out)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (primary document store)
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	// Ensure MongoDB indexes (unique email on users)
	if err := services.EnsureUserIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB user indexes: %v", err)
	} else {
		log.Println("✅ MongoDB user indexes ensured")
	}

	// Initialize Cloudinary service
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret); err != nil {
			log.Printf("⚠️  WARNING: Failed to initialize Cloudinary: %v", err)
			log.Println("   Image uploads will not be available")
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("⚠️  WARNING: Cloudinary credentials not found. Image uploads will not be available")
	}

	// Initialize AI service. AI routes answer 503 when the key is missing
	// or still at the example placeholder; everything else works normally.
	handlers.InitGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)
	if cfg.HasGeminiKey() {
		log.Println("✅ Gemini AI service configured")
	} else {
		log.Println("⚠️  WARNING: GEMINI_API_KEY not set. AI features will be unavailable")
	}

	// Start the Redis listener that fans change events out to WebSockets
	services.StartRedisUpdateSubscriber(context.Background())

	// Setup router
	r := chi.NewRouter()

	// Custom CORS: set headers and respond to OPTIONS with 200 so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.IsProduction() {
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.RateLimitMiddleware)
		r.Use(middleware.AIRateLimit)
		log.Println("✅ Production security enabled (security headers, per-IP + AI rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r)

	log.Printf("🚀 NutriMate backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
