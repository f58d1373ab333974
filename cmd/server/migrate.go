package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := bootstrap()
				if err != nil {
					return err
				}
				db, err := openDatabase(cfg, log)
				if err != nil {
					return err
				}
				defer db.Close()
				return db.RunMigrations()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := bootstrap()
				if err != nil {
					return err
				}
				db, err := openDatabase(cfg, log)
				if err != nil {
					return err
				}
				defer db.Close()
				return db.MigrateDown()
			},
		},
		&cobra.Command{
			Use:   "to <version>",
			Short: "Migrate up or down to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				cfg, log, err := bootstrap()
				if err != nil {
					return err
				}
				db, err := openDatabase(cfg, log)
				if err != nil {
					return err
				}
				defer db.Close()
				return db.MigrateToVersion(uint(version))
			},
		},
	)
	return cmd
}
