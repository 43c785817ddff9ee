// Command main seeds the database with demo users, communities, and
// threaded messages.
package main

import (
	"context"
	"flag"
	"log"

	"threadloom/internal/config"
	"threadloom/internal/database"
	"threadloom/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 12, "number of users to create")
	numCommunities := flag.Int("communities", 3, "number of communities to create")
	numMessages := flag.Int("messages", 30, "number of root messages to create")
	maxDepth := flag.Int("depth", 4, "maximum reply depth")
	clean := flag.Bool("clean", false, "delete existing data first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = seed.Seed(context.Background(), db, seed.Options{
		NumUsers:       *numUsers,
		NumCommunities: *numCommunities,
		NumMessages:    *numMessages,
		MaxReplyDepth:  *maxDepth,
		ShouldClean:    *clean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}
