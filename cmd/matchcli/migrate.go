package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ringside-data/stock.report/internal/db"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE:  runMigrateDown,
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE:  runMigrateVersion,
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Set the recorded schema version without running migrations (dirty-state recovery)",
	Args:  cobra.ExactArgs(1),
	RunE:  runMigrateForce,
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "migrations", "migrations", "migrations directory")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	migrateCmd.AddCommand(migrateForceCmd)
}

func openStore() (*db.DB, error) {
	database, err := db.NewDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateUp(migrationsDir); err != nil {
		return err
	}

	version, _, err := database.MigrateVersion(migrationsDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Database is at version %d\n", version)
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateDown(migrationsDir); err != nil {
		return err
	}

	version, _, err := database.MigrateVersion(migrationsDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Database is at version %d\n", version)
	return nil
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	version, dirty, err := database.MigrateVersion(migrationsDir)
	if err != nil {
		return err
	}

	latest, err := db.GetLatestMigrationVersion(migrationsDir)
	if err != nil {
		return err
	}

	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(os.Stdout, "Database version: %d (%s), latest available: %d\n", version, state, latest)
	return nil
}

func runMigrateForce(cmd *cobra.Command, args []string) error {
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}

	database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateForce(migrationsDir, version); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Forced database version to %d\n", version)
	return nil
}
