package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-management-api/config"
	"github.com/oksasatya/project-management-api/internal/domain/entity"
	"github.com/oksasatya/project-management-api/internal/domain/repository"
	pginfra "github.com/oksasatya/project-management-api/internal/infrastructure/postgres"
	"github.com/oksasatya/project-management-api/pkg/helpers"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// seed creates an active, verified admin account. Running it twice is safe.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	email := entity.NormalizeEmail(getenv("SEED_ADMIN_EMAIL", "admin@example.com"))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if len(password) < 6 {
		log.Fatal("SEED_ADMIN_PASSWORD must be at least 6 characters")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	hash, err := helpers.NewPasswordHasher(cfg.BcryptCost).Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	u := &entity.User{
		FirstName:       getenv("SEED_ADMIN_FIRST_NAME", "Admin"),
		LastName:        getenv("SEED_ADMIN_LAST_NAME", "User"),
		Email:           email,
		Password:        hash,
		Role:            entity.RoleAdmin,
		IsActive:        true,
		IsEmailVerified: true,
		Preferences:     entity.DefaultPreferences(),
	}
	switch err := users.Create(ctx, u); {
	case errors.Is(err, repository.ErrDuplicate):
		logger.WithField("email", email).Info("admin already exists, nothing to do")
	case err != nil:
		log.Fatalf("failed to seed admin: %v", err)
	default:
		logger.WithFields(logrus.Fields{"id": u.ID, "email": email}).Info("seeded admin")
	}
}
