package main

import (
	"log"

	"food-rag-be/internal/config"
	"food-rag-be/internal/model"
	"food-rag-be/internal/pkg/logger"
	"food-rag-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, logger.NewNopLogger(), false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	for _, sql := range []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	} {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Failed to execute setup SQL: %v", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.FoodItem{},
		&model.UserPreference{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Migration completed successfully.")
}
