package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"towerdeck/internal/config"
	"towerdeck/internal/domain/aircraft"
	"towerdeck/internal/domain/event"
	"towerdeck/pkg/database"
)

const usage = `
towerdeck - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all migrations (SQL + GORM)
  status      Show database connection status
  reset       Drop all tables and re-run migrations (DANGEROUS)

Flags:
  -migrations string   Path to migrations directory (default "migrations")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go reset
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	switch flag.Arg(0) {
	case "up":
		if err := db.AutoMigrate(&aircraft.Aircraft{}, &event.Event{}); err != nil {
			log.Fatalf("AutoMigrate failed: %v", err)
		}
		if err := database.ApplyRawMigrations(db, *migrationsDir); err != nil {
			log.Fatalf("Raw migrations failed: %v", err)
		}
		log.Println("Migrations applied")
	case "status":
		if err := database.HealthCheck(context.Background(), db); err != nil {
			log.Fatalf("Database unreachable: %v", err)
		}
		log.Println("Database connection OK")
	case "reset":
		if err := db.Migrator().DropTable(&event.Event{}, &aircraft.Aircraft{}); err != nil {
			log.Fatalf("Drop failed: %v", err)
		}
		if err := db.AutoMigrate(&aircraft.Aircraft{}, &event.Event{}); err != nil {
			log.Fatalf("AutoMigrate failed: %v", err)
		}
		if err := database.ApplyRawMigrations(db, *migrationsDir); err != nil {
			log.Fatalf("Raw migrations failed: %v", err)
		}
		log.Println("Database reset")
	default:
		flag.Usage()
		os.Exit(1)
	}
}
