package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/fiberbill/fiberbill/internal/config"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	dir := flag.String("dir", "migrations", "Directory containing .sql migration files")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(*dir, "*.sql"))
	if err != nil {
		logger.Fatalf("Failed to list migrations: %v", err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		logger.Fatalf("No migration files found in %s", *dir)
	}

	if *dryRun {
		for _, file := range files {
			content, err := os.ReadFile(file)
			if err != nil {
				logger.Fatalf("Failed to read %s: %v", file, err)
			}
			fmt.Printf("-- %s\n%s\n", file, content)
		}
		return
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User,
		cfg.Postgres.Password, cfg.Postgres.DBName, cfg.Postgres.SSLMode,
	)
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer db.Close()

	db.MustExec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		filename VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)

	for _, file := range files {
		name := filepath.Base(file)

		var applied int
		if err := db.Get(&applied, `SELECT COUNT(*) FROM schema_migrations WHERE filename = $1`, name); err != nil {
			logger.Fatalf("Failed to check migration state: %v", err)
		}
		if applied > 0 {
			logger.Infow("migration already applied", "file", name)
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			logger.Fatalf("Failed to read %s: %v", file, err)
		}

		tx := db.MustBegin()
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			logger.Fatalf("Migration %s failed: %v", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback()
			logger.Fatalf("Failed to record migration %s: %v", name, err)
		}
		if err := tx.Commit(); err != nil {
			logger.Fatalf("Failed to commit migration %s: %v", name, err)
		}
		logger.Infow("migration applied", "file", name)
	}
}
