package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/you/authgate/domain"
	"github.com/you/authgate/internal/config"
	"github.com/you/authgate/internal/infrastructure/auth"
	"github.com/you/authgate/internal/infrastructure/database"
	"github.com/you/authgate/internal/infrastructure/repositories"
)

type seedUser struct {
	email    string
	name     string
	role     string
	password string
}

// Demo users for local development. Passwords are hashed on insert; never
// reuse them anywhere real.
var seedUsers = []seedUser{
	{email: "admin@admin.com", name: "Admin", role: domain.RoleAdmin, password: "Admin123!"},
	{email: "test1@test1.com", name: "Test User", role: domain.RoleUser, password: "Test123!"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Open(cfg.DSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	userRepo := repositories.NewUserRepository(db)
	passwordSvc := auth.NewPasswordService()
	ctx := context.Background()

	for _, su := range seedUsers {
		if existing, err := userRepo.FindByEmail(ctx, su.email); err == nil && existing != nil {
			fmt.Printf("skip %s (already present)\n", su.email)
			continue
		}

		hash, err := passwordSvc.Hash(su.password)
		if err != nil {
			log.Fatalf("hash password for %s: %v", su.email, err)
		}

		now := time.Now()
		user := &domain.User{
			Name:          su.name,
			Email:         su.email,
			EmailVerified: true,
			Role:          su.role,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		account := &domain.Account{
			ProviderID:   domain.ProviderCredentials,
			AccountID:    su.email,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := userRepo.CreateWithAccount(ctx, user, account); err != nil {
			log.Fatalf("create %s: %v", su.email, err)
		}
		fmt.Printf("created %s (%s)\n", su.email, su.role)
	}

	fmt.Println("Seeding completed")
}
