// Package main seeds a development database with one advisor per category.
// Existing rows are left untouched, so it is safe to run repeatedly.
package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/flc-events/backend/config"
	"github.com/flc-events/backend/internal/advisors"
	"github.com/flc-events/backend/internal/models"
	"github.com/flc-events/backend/pkg/database"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	repo := advisors.NewRepository(pool)
	for _, category := range models.Categories {
		slug := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		email := fmt.Sprintf("%s.advisor@flc.example.edu", slug)
		advisor, created, err := repo.FindOrCreate(ctx, email, advisors.ProfileParams{
			FirstName:   category,
			LastName:    "Advisor",
			Category:    category,
			Affiliation: "Example High School",
		})
		if err != nil {
			logger.Fatal("seed advisor", zap.Error(err), zap.String("category", category))
		}
		if created {
			logger.Info("seeded advisor", zap.String("email", advisor.Email), zap.String("category", category))
		} else {
			logger.Info("advisor already present", zap.String("email", advisor.Email))
		}
	}
	logger.Info("seed complete")
}
