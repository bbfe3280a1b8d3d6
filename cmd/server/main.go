package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"cobranzas_app_echo/internal/handlers"
	authMiddleware "cobranzas_app_echo/internal/middleware"
	"cobranzas_app_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Firebase
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}

	authClient, err := services.InitFirebase(credPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Auth features will not work until valid credentials are provided")
	}

	// Initialize Database
	var db *gorm.DB
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err = services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Redis is optional; without it settings reads go straight to the database
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// Services
	settingsService := services.NewSettingsService(db, cache)
	syncService := services.NewSyncService(db, services.SystemClock)
	collectionService := services.NewCollectionService(db, services.SystemClock)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authClient)
	profileHandler := handlers.NewProfileHandler(db, authClient)
	clientHandler := handlers.NewClientHandler(db)
	policyHandler := handlers.NewPolicyHandler(db, syncService, settingsService)
	paymentHandler := handlers.NewPaymentHandler(db, syncService, settingsService, collectionService)
	settingsHandler := handlers.NewSettingsHandler(db, settingsService)
	dashboardHandler := handlers.NewDashboardHandler(db)

	// Public routes
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)

	// Protected routes
	api := e.Group("/api")
	api.Use(authMiddleware.RequireAuth(authClient))

	api.GET("/me", profileHandler.Me)
	api.GET("/staff", profileHandler.ListStaff)
	api.POST("/staff", profileHandler.CreateStaff)
	api.PUT("/staff/:id", profileHandler.UpdateStaff)

	api.GET("/clients", clientHandler.ListClients)
	api.GET("/clients/:id", clientHandler.GetClient)
	api.POST("/clients", clientHandler.CreateClient)
	api.PUT("/clients/:id", clientHandler.UpdateClient)
	api.DELETE("/clients/:id", clientHandler.DeleteClient)

	api.GET("/policies", policyHandler.ListPolicies)
	api.POST("/policies", policyHandler.CreatePolicy)
	api.POST("/policies/:id/cancel", policyHandler.CancelPolicy)
	api.DELETE("/policies/:id", policyHandler.DeletePolicy)
	api.POST("/policies/refresh-statuses", policyHandler.RefreshStatuses)
	api.POST("/installments/:id/pay", policyHandler.PayInstallment)

	api.GET("/payments", paymentHandler.ListPaymentsByYear)
	api.POST("/payments", paymentHandler.RegisterPayment)
	api.GET("/collections/grid", paymentHandler.CollectionsGrid)
	api.GET("/alerts/payments", paymentHandler.UpcomingPayments)
	api.GET("/alerts/policies", paymentHandler.ExpiringPolicies)

	api.GET("/settings", settingsHandler.GetSettings)
	api.PUT("/settings", settingsHandler.UpdateSettings)

	api.GET("/dashboard/stats", dashboardHandler.Stats)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
