package db

import (
	"collaborative-annotation-engine/internal/annotation"
	"collaborative-annotation-engine/internal/document"
	"collaborative-annotation-engine/internal/invite"
	"collaborative-annotation-engine/internal/user"
	"context"
	"log"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&user.User{},
		&document.Document{},
		&annotation.Annotation{},
		&annotation.Reply{},
		&invite.Invitation{},
	)

	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database schema migrated successfully")
}

// SeedData seeds the database with initial data (for development only)
func SeedData() {
	ctx := context.Background()
	userRepo := user.NewRepository(AppDb)

	testUser := &user.User{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "password123",
		IsActive: true,
	}

	// Check if user exists
	existing, err := userRepo.FindByEmail(ctx, testUser.Email)
	if err != nil {
		userService := user.NewService(userRepo)
		// User doesn't exist, create it
		if err := userService.Register(ctx, testUser); err != nil {
			log.Printf("Error creating test user: %v", err)
			return
		}
		log.Printf("Created test user: %s", testUser.Email)
		existing = testUser
	} else {
		log.Printf("Test user already exists: %s", testUser.Email)
	}

	// Give the test user something to annotate
	docRepo := document.NewRepository(AppDb)
	docs, _, err := docRepo.ListByOwner(ctx, existing.ID, 1, 1)
	if err != nil || len(docs) > 0 {
		return
	}

	sample := &document.Document{
		Title:   "Welcome",
		Content: "Welcome to machine learning. Select any span of this text to attach an annotation.",
	}
	if err := docRepo.Create(ctx, existing.ID, sample); err != nil {
		log.Printf("Error creating sample document: %v", err)
	} else {
		log.Printf("Created sample document %d", sample.ID)
	}
}
