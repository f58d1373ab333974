package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/indigenous-art-atlas/internal/auth"
	"github.com/indigenous-art-atlas/internal/repository"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a session token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
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

			users := repository.New(db).User
			user, err := users.GetByID(context.Background(), userID)
			if err != nil {
				return fmt.Errorf("failed to load user %d: %w", userID, err)
			}
			if !user.Active {
				return fmt.Errorf("user %d is deactivated", userID)
			}

			token, err := auth.NewAuthenticator(cfg.Auth, users).Issue(user, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
