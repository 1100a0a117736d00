// Command main runs the database seeder for the DriverQuote API.
package main

import (
	"flag"
	"log"

	"driverquote/internal/config"
	"driverquote/internal/database"
	"driverquote/internal/seed"
)

func main() {
	numContacts := flag.Int("contacts", 50, "Number of contacts to create")
	maxDays := flag.Int("days", 90, "Spread createdAt over this many past days")
	shouldClean := flag.Bool("clean", false, "Delete existing contacts before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := seed.Seed(db, seed.Options{
		NumContacts: *numContacts,
		MaxDays:     *maxDays,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done!")
}
