package main

import (
	"log"
	"time"

	"gnoa_membership_go/config"
	"gnoa_membership_go/db"
	"gnoa_membership_go/handlers"
	"gnoa_membership_go/middleware"
	"gnoa_membership_go/models"
	"gnoa_membership_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.TursoDatabaseURL, cfg.TursoAuthToken, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Category{},
		&models.Province{},
		&models.District{},
		&models.Institution{},
		&models.DesignationOption{},
		&models.MemberApplication{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed reference data (no-op when already present)
	if err := services.SeedReferenceData(db.DB); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}

	// Initialize file storage (R2 or local)
	services.InitializeStorage(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Static files
	e.Static("/static", "static")

	// Public routes (no authentication required)
	e.POST("/api/auth/login", handlers.LoginHandler, middleware.LoginRateLimiter.Middleware())
	e.POST("/api/applications", handlers.SubmitApplicationHandler, middleware.ApplicationRateLimiter.Middleware())

	// Cascading selection endpoints feed the public application form
	reference := e.Group("/api", middleware.APIRateLimiter.Middleware())
	{
		reference.GET("/reference/categories", handlers.GetCategoriesHandler)
		reference.GET("/reference/provinces", handlers.GetProvincesHandler)
		reference.GET("/reference/districts", handlers.GetDistrictsHandler)
		reference.GET("/reference/designations", handlers.GetDesignationsHandler)
		reference.GET("/reference/institutions", handlers.GetInstitutionsHandler)
		reference.POST("/selection", handlers.SelectionHandler)
	}

	// Protected routes (authentication required)
	protected := e.Group("/api", middleware.RequireAuth())
	{
		protected.POST("/auth/logout", handlers.LogoutHandler)
		protected.GET("/me", handlers.MeHandler)
		protected.GET("/dashboard", handlers.DashboardHandler)

		protected.GET("/applications", handlers.ListApplicationsHandler)
		protected.GET("/applications/export", handlers.ExportApplicationsExcelHandler)
		protected.GET("/applications/:id", handlers.GetApplicationHandler)
		protected.GET("/applications/:id/pdf", handlers.ExportApplicationPDFHandler)
		protected.GET("/applications/:id/signature", handlers.GetSignatureHandler)
		protected.POST("/applications/:id/verify", handlers.VerifyApplicationHandler)
		protected.POST("/applications/:id/reject", handlers.RejectApplicationHandler)

		// Admin-only routes
		admin := protected.Group("", middleware.RequireRole(models.RoleAdmin))
		{
			admin.DELETE("/applications/:id", handlers.DeleteApplicationHandler)

			admin.GET("/users", handlers.ListUsersHandler)
			admin.POST("/users", handlers.CreateUserHandler)
			admin.PATCH("/users/:id", handlers.PatchUserHandler)
			admin.DELETE("/users/:id", handlers.DeleteUserHandler)

			admin.GET("/audit-logs", handlers.ListAuditLogsHandler)
		}
	}

	// Expired session cleanup (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			removed, err := services.CleanupExpiredSessions(db.DB)
			if err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
