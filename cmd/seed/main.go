package main

import (
	"context"
	_ "embed"
	"flag"
	"log"
	"os"
	"time"

	"food-rag-be/internal/bootstrap"
	"food-rag-be/internal/config"
	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/logger"
	"food-rag-be/internal/service"
	"food-rag-be/pkg/database"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed foods.yaml
var defaultCatalogue []byte

type catalogue struct {
	Foods []dto.CreateFoodRequest `yaml:"foods"`
}

func main() {
	file := flag.String("file", "", "YAML catalogue to index (defaults to the built-in one)")
	flag.Parse()

	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	defer sysLogger.Sync()

	data := defaultCatalogue
	if *file != "" {
		var err error
		if data, err = os.ReadFile(*file); err != nil {
			log.Fatalf("Error: read catalogue: %v", err)
		}
	}

	var cat catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		log.Fatalf("Error: parse catalogue: %v", err)
	}

	var db *gorm.DB
	if cfg.VectorStore.Provider == "pgvector" {
		var err error
		if db, err = database.NewGormDBFromDSN(cfg.Database.Connection, sysLogger, false); err != nil {
			log.Fatal("Error: Failed to connect to database:", err)
		}
	}

	items, err := bootstrap.NewVectorStore(cfg.VectorStore, db, bootstrap.NewEmbeddingProvider(cfg.Ai, sysLogger), sysLogger)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Printf("Seeding %d food items...", len(cat.Foods))
	ids, err := service.NewFoodIndexer(items).Index(ctx, cat.Foods...)
	if err != nil {
		log.Fatalf("Error: indexing failed: %v", err)
	}
	log.Printf("Indexed %d food items.", len(ids))
}
