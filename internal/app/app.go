package app

import (
	"net/http"
	"time"

	"voxnova-backend/internal/auth"
	"voxnova-backend/internal/classifier"
	"voxnova-backend/internal/config"
	"voxnova-backend/internal/database"
	"voxnova-backend/internal/health"
	"voxnova-backend/internal/listings"
	"voxnova-backend/internal/marketplace"
	"voxnova-backend/internal/middleware"
	"voxnova-backend/internal/profile"
	"voxnova-backend/internal/uploads"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration.
func CreateApp(cfg *config.Config) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		SiteURL:       cfg.SiteURL,
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Session (Redis); the health marker reuses the Redis client
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	// --- Health (no auth) ---
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		DB:             dbPinger(db),
		SiteURL:        cfg.SiteURL,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)

	// --- Auth (no auth middleware) ---
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{
		DB:         db,
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/signup", authHandlers.Signup)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth required) ---
	if db != nil && rdb != nil {
		listingsService := &listings.Service{DB: db}

		// Classifier: POST /api/v1/analyze
		analyzer := &classifier.HTTPClient{
			APIKey:  cfg.OpenRouterAPIKey,
			Model:   cfg.OpenRouterModel,
			Referer: cfg.SiteURL,
			Client:  &http.Client{Timeout: 60 * time.Second},
		}
		classifierHandlers := &classifier.Handlers{Classifier: analyzer}
		app.Post("/api/v1/analyze", middleware.RequireAuth(), classifierHandlers.Analyze)

		// Listings
		listingsHandlers := &listings.Handlers{Service: listingsService}
		listingsGroup := app.Group("/api/v1/listings", middleware.RequireAuth())
		listingsGroup.Post("/", listingsHandlers.CreateListing)
		listingsGroup.Get("/seller", listingsHandlers.SellerListings)
		listingsGroup.Delete("/seller", listingsHandlers.RemoveListing)
		listingsGroup.Get("/:listing_id", listingsHandlers.GetListingByID)

		// Marketplace browse surface (public: buyers search before signing in)
		marketplaceHandlers := &marketplace.Handlers{Listings: listingsService}
		marketplaceGroup := app.Group("/api/v1/marketplace")
		marketplaceGroup.Get("/search", marketplaceHandlers.Search)
		marketplaceGroup.Get("/map", marketplaceHandlers.MapView)

		// Profile
		profileService := &profile.Service{DB: db, Listings: listingsService}
		profileHandlers := &profile.Handlers{Service: profileService}
		profileGroup := app.Group("/api/v1/profile", middleware.RequireAuth())
		profileGroup.Get("/", profileHandlers.GetProfile)
		profileGroup.Patch("/", profileHandlers.UpdateProfile)

		// Uploads
		supabaseClient := &uploads.HTTPClient{
			BaseURL:   cfg.SupabaseURL,
			SecretKey: cfg.SupabaseSecretKey,
			Client:    &http.Client{Timeout: 10 * time.Second},
		}
		uploadService := &uploads.Service{
			Client:      supabaseClient,
			SupabaseURL: cfg.SupabaseURL,
		}
		uploadHandlers := &uploads.Handlers{Service: uploadService}
		uploadGroup := app.Group("/api/v1/uploads", middleware.RequireAuth())
		uploadGroup.Post("/listing-image", uploadHandlers.UploadListingImage)
	}

	return app, nil
}

// dbPinger adapts the GORM connection to the health check's Ping interface.
func dbPinger(db *gorm.DB) health.DBPinger {
	if db == nil {
		return nil
	}
	return pingerFunc(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
}

type pingerFunc func() error

func (f pingerFunc) Ping() error { return f() }
