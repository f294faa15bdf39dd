// Command main runs the database seeder for Accessdesk.
package main

import (
	"flag"
	"log"

	"accessdesk/internal/config"
	"accessdesk/internal/database"
	"accessdesk/internal/seed"
)

func main() {
	numAccounts := flag.Int("accounts", 40, "Number of accounts to create")
	numMessages := flag.Int("messages", 120, "Number of messages to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d accounts, %d messages, clean=%v\n", *numAccounts, *numMessages, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Seed(seed.Options{
		NumAccounts: *numAccounts,
		NumMessages: *numMessages,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done")
}
