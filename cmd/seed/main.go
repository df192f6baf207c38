package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"leadflow.backend/internal/config"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/infrastructure/repositories"
	"leadflow.backend/pkg/crypto"
)

// Seeds the configured admin and super-admin accounts. Safe to run
// repeatedly: existing emails are left untouched.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		return errors.New("SEED_ADMIN_PASSWORD is required")
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.Database.URL(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	userRepo := repositories.NewUserRepository(db)
	ctx := context.Background()

	seed := func(email string, role entities.UserRole) error {
		if _, err := userRepo.GetByEmail(ctx, email); err == nil {
			log.Printf("%s already exists, skipping", email)
			return nil
		} else if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		hash, err := crypto.HashPassword(password)
		if err != nil {
			return err
		}

		user := &entities.User{
			Name:         email,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create %s: %w", email, err)
		}
		log.Printf("created %s (%s)", email, role)
		return nil
	}

	for _, email := range cfg.Admin.SuperAdminEmails {
		if err := seed(email, entities.UserRoleSuperAdmin); err != nil {
			return err
		}
	}
	for _, email := range cfg.Admin.AdminEmails {
		if err := seed(email, entities.UserRoleAdmin); err != nil {
			return err
		}
	}
	return nil
}
