package main

import (
	"log"

	"language-mirror-be/internal/config"
	"language-mirror-be/internal/model"
	"language-mirror-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("DB_CONNECTION_STRING is required for migration")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Turn{},
		&model.Feedback{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("migration complete")
}
