// Command seed creates the demo admin, employee and chef accounts. Existing
// accounts are left untouched.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"

	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
	"github.com/officelunch/attendance-api/internal/core/service"
	"github.com/officelunch/attendance-api/internal/infrastructure/db/mongo"
	"github.com/officelunch/attendance-api/internal/pkg/config"
	"github.com/officelunch/attendance-api/pkg/logger"
)

const defaultPassword = "password123"

var defaultUsers = []ports.RegisterInput{
	{Name: "Admin User", Email: "admin@demo.com", Role: domain.RoleAdmin, Department: "Administration", EmployeeID: "ADM001"},
	{Name: "John Employee", Email: "employee@demo.com", Role: domain.RoleEmployee, Department: "Engineering", EmployeeID: "EMP001"},
	{Name: "Chef Mike", Email: "chef@demo.com", Role: domain.RoleChef, Department: "Kitchen", EmployeeID: "CHF001"},
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "attendance-seed"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	auth := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL, log)
	for _, in := range defaultUsers {
		in.Password = defaultPassword
		u, err := auth.Register(ctx, in)
		switch {
		case errors.Is(err, domain.ErrUserExists):
			log.Info().Str("email", in.Email).Msg("user already exists")
		case err != nil:
			log.Fatal().Err(err).Str("email", in.Email).Msg("create user")
		default:
			log.Info().Str("email", u.Email).Str("role", u.Role).Msg("user created")
		}
	}

	log.Info().Str("password", defaultPassword).Msg("demo accounts ready: admin@demo.com, employee@demo.com, chef@demo.com")
}
