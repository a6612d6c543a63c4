package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"disaster-prep-community/pkg/security"
	"disaster-prep-community/services/community-service/models"
	"disaster-prep-community/services/community-service/repository"
)

// Run seeds the single admin account and the starter articles. It is
// idempotent: existing rows are left untouched, so it is safe to run on
// every service start.
func Run(ctx context.Context, store repository.Store, adminEmail, adminPassword string) error {
	_, err := store.UserByEmail(ctx, adminEmail)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("seed: lookup admin: %w", err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		hash, hashErr := security.HashPassword(adminPassword)
		if hashErr != nil {
			return fmt.Errorf("seed: hash admin password: %w", hashErr)
		}
		admin := models.User{
			Email:        adminEmail,
			PasswordHash: hash,
			FullName:     "Platform Administrator",
			Role:         models.RoleAdmin,
		}
		if err := store.CreateUser(ctx, &admin); err != nil {
			return fmt.Errorf("seed: create admin: %w", err)
		}
		log.Printf("[OK] Seeded admin account - ID: %s", admin.ID)
	}

	count, err := store.CountArticles(ctx)
	if err != nil {
		return fmt.Errorf("seed: count articles: %w", err)
	}
	if count > 0 {
		return nil
	}

	articles := []models.Article{
		{
			Title:    "Emergency Kit Guide",
			Category: "Emergency Kit Guide",
			Content:  "Pack water, food, first aid, flashlight, radio.",
		},
		{
			Title:    "Contingency Plan Basics",
			Category: "Contingency Plan",
			Content:  "Define roles, routes, contacts, and drills.",
		},
		{
			Title:    "Typhoon Safety Tips",
			Category: "Article",
			Content:  "Secure windows, monitor advisories, prepare evacuation.",
		},
	}
	for i := range articles {
		if err := store.CreateArticle(ctx, &articles[i]); err != nil {
			return fmt.Errorf("seed: create article %q: %w", articles[i].Title, err)
		}
	}
	log.Printf("[OK] Seeded %d starter articles", len(articles))

	return nil
}
