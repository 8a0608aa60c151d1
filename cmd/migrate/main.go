package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/shopsphere/backend/internal/infrastructure/config"
	"github.com/shopsphere/backend/internal/infrastructure/logger"
	"github.com/shopsphere/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "Path to migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Error("Error closing migrator", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "steps":
		if len(args) < 2 {
			log.Fatal("steps requires a count argument")
		}
		n, parseErr := strconv.Atoi(args[1])
		if parseErr != nil {
			log.Fatal("Invalid step count", zap.String("arg", args[1]))
		}
		err = migrator.Steps(n)
	case "version":
		version, dirty, verErr := migrator.Version()
		if verErr != nil {
			log.Fatal("Failed to read version", zap.Error(verErr))
		}
		log.Info("Current schema version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty))
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command>

Commands:
  up             Apply all pending migrations
  down           Roll back all migrations
  steps <n>      Apply n migrations (negative rolls back)
  version        Print the current schema version

Flags:
  -path          Path to migrations directory (default: ./migrations)
  -log-level     Log level (default: info)`)
}
