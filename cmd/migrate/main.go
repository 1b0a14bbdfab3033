package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"fyyur/internal/config"
)

var (
	migrationsDir string
	envFile       string
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the fyyur database schema",
	Long: `migrate runs the SQL files under ./migrations against DATABASE_URL.

Examples:

  migrate up
  migrate down --steps 1
  migrate version
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&migrationsDir, "path", "p", "migrations", "Directory holding the migration files")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "config/local.env", "Optional env file loaded before reading the environment")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(forceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}

// newMigrator opens the database with lib/pq and binds it to the file source.
// The returned close func releases both.
func newMigrator() (*migrate.Migrate, func(), error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.URL == "" {
		return nil, nil, errors.New("DATABASE_URL is required to run migrations")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create postgres driver: %w", err)
	}

	absPath, err := filepath.Abs(migrationsDir)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve migrations path: %w", err)
	}
	sourceURL := "file://" + filepath.ToSlash(absPath)

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}

	closeFn := func() {
		_, _ = m.Close()
	}
	return m, closeFn, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
