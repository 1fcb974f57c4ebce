package main

import (
	"log"

	"gnoa_membership_go/config"
	"gnoa_membership_go/db"
	"gnoa_membership_go/models"
	"gnoa_membership_go/services"
)

// Seeds provinces, districts, categories, designation lists, and the
// starter institutions. Safe to run repeatedly.
func main() {
	cfg := config.Load()

	if err := db.Initialize(cfg.DBPath, cfg.TursoDatabaseURL, cfg.TursoAuthToken, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	err := db.AutoMigrate(
		&models.Category{},
		&models.Province{},
		&models.District{},
		&models.Institution{},
		&models.DesignationOption{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := services.SeedReferenceData(db.DB); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}

	log.Println("Reference data seeded")
}
