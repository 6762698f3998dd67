// Command seed populates the database with a handful of demo accounts so
// the candidate feed and match flows can be exercised locally. Every demo
// account's password is "password1".
package main

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"friendly/internal/auth"
	"friendly/internal/config"
	"friendly/internal/geo"
	"friendly/internal/models"
	"friendly/internal/storage"
)

var demoUsers = []models.User{
	{Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Nguyen", Hobbies: "hiking, chess", Interests: "maps, coffee", Zipcode: "10001", FriendRadius: 10},
	{Username: "bob", Email: "bob@example.com", FirstName: "Bob", LastName: "Rivera", Hobbies: "cycling", Interests: "jazz", Zipcode: "10002", FriendRadius: 15},
	{Username: "carol", Email: "carol@example.com", FirstName: "Carol", LastName: "Okafor", Hobbies: "painting", Interests: "museums", Zipcode: "10001", FriendRadius: 5},
	{Username: "dave", Email: "dave@example.com", FirstName: "Dave", LastName: "Lindqvist", Hobbies: "climbing", Interests: "weather", Zipcode: "10003", FriendRadius: 20},
	{Username: "erin", Email: "erin@example.com", FirstName: "Erin", LastName: "Sato", Hobbies: "baking", Interests: "gardens", Zipcode: "10025", FriendRadius: 25},
}

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Fail fast on a broken neighbor table rather than at first request.
	if cfg.Matching.ZipTablePath != "" {
		if _, err := geo.LoadTable(cfg.Matching.ZipTablePath); err != nil {
			log.Fatalf("Failed to load zip neighbor table %s: %v", cfg.Matching.ZipTablePath, err)
		}
		log.Printf("Zip neighbor table %s loads cleanly.", cfg.Matching.ZipTablePath)
	}

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}

	userRepo := storage.NewGormUserRepository(db)
	ctx := context.Background()

	hash, err := auth.HashPassword("password1")
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	created := 0
	for _, demo := range demoUsers {
		if _, err := userRepo.GetByUsername(ctx, demo.Username); err == nil {
			log.Printf("User %s already exists, skipping.", demo.Username)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to check user %s: %v", demo.Username, err)
		}

		user := demo
		user.PasswordHash = hash
		user.ImageURL = models.DefaultImageURL
		if err := userRepo.Create(ctx, &user); err != nil {
			log.Fatalf("Failed to create user %s: %v", user.Username, err)
		}
		created++
	}

	log.Printf("Seed complete: %d users created, %d skipped.", created, len(demoUsers)-created)
}
