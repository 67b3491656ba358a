package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bookshelf/internal/config"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/platform/postgres"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	config.LoadEnvFiles()
	logger.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	if err := validateCommand(*command, *name); err != nil {
		log.Fatal().Err(err).Send()
	}

	dir := migrationsDir()
	if *command == "create" {
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			log.Fatal().Err(err).Msg("Failed to create migration")
		}
		log.Info().Str("name", *name).Msg("Migration created")
		return
	}

	ctx := context.Background()
	pool, err := postgres.Open(ctx, databaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Send()
	}

	switch *command {
	case "up":
		if err := goose.UpContext(ctx, db, dir); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("Migrations applied successfully")
	case "down":
		if err := goose.DownContext(ctx, db, dir); err != nil {
			log.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		log.Info().Msg("Migrations rolled back successfully")
	case "status":
		if err := goose.StatusContext(ctx, db, dir); err != nil {
			log.Fatal().Err(err).Msg("Failed to check migration status")
		}
	}
}

func validateCommand(command, name string) error {
	switch command {
	case "up", "down", "status":
		return nil
	case "create":
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		return nil
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, status, create", command)
	}
}
