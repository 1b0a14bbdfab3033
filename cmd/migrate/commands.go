package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

var (
	upSteps   int
	downSteps int
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeFn, err := newMigrator()
		if err != nil {
			return err
		}
		defer closeFn()

		if upSteps > 0 {
			err = m.Steps(upSteps)
		} else {
			err = m.Up()
		}
		if err := ignoreNoChange(err); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}

		green := color.New(color.FgGreen, color.Bold)
		green.Println("✓ Migrations applied")
		return printVersion(m)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (all of them unless --steps is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeFn, err := newMigrator()
		if err != nil {
			return err
		}
		defer closeFn()

		if downSteps > 0 {
			err = m.Steps(-downSteps)
		} else {
			err = m.Down()
		}
		if err := ignoreNoChange(err); err != nil {
			return fmt.Errorf("roll back migrations: %w", err)
		}

		yellow := color.New(color.FgYellow, color.Bold)
		yellow.Println("↩ Migrations rolled back")
		return printVersion(m)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeFn, err := newMigrator()
		if err != nil {
			return err
		}
		defer closeFn()
		return printVersion(m)
	},
}

var forceCmd = &cobra.Command{
	Use:   "force VERSION",
	Short: "Mark VERSION as applied and clear the dirty flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var version int
		if _, err := fmt.Sscanf(args[0], "%d", &version); err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}

		m, closeFn, err := newMigrator()
		if err != nil {
			return err
		}
		defer closeFn()

		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		return printVersion(m)
	},
}

func init() {
	upCmd.Flags().IntVarP(&upSteps, "steps", "n", 0, "Apply at most N migrations")
	downCmd.Flags().IntVarP(&downSteps, "steps", "n", 0, "Roll back at most N migrations")
}

func printVersion(m *migrate.Migrate) error {
	cyan := color.New(color.FgCyan)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		cyan.Println("Schema version: none")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	if dirty {
		color.New(color.FgRed, color.Bold).Printf("Schema version: %d (dirty)\n", version)
		return nil
	}
	cyan.Printf("Schema version: %d\n", version)
	return nil
}
