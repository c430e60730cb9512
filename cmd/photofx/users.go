package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/filmlab/photofx/internal/core/domain"
	"github.com/filmlab/photofx/internal/core/ports"
	"github.com/filmlab/photofx/internal/core/service"
	"github.com/filmlab/photofx/internal/infrastructure/config"
	mongostore "github.com/filmlab/photofx/internal/infrastructure/db/mongo"
	"github.com/filmlab/photofx/pkg/logger"
)

// userServiceOpener connects to the user store and returns a service plus a
// function releasing the connection.
type userServiceOpener func(ctx context.Context) (ports.UserService, func(), error)

func openUserService(ctx context.Context) (ports.UserService, func(), error) {
	cfg, err := config.LoadStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "photofx"})

	db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "photofx-cli"})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := mongostore.Disconnect(context.Background(), db); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}
	return service.NewUserService(mongostore.NewUserRepository(db), log), closeFn, nil
}

func newUsersCommand(open userServiceOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage user records",
	}
	cmd.AddCommand(newUsersShowCommand(open))
	cmd.AddCommand(newUsersUpgradeCommand(open))
	return cmd
}

func newUsersShowCommand(open userServiceOpener) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a user and their quota",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := svc.FindByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("find %s: %w", email, err)
			}
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUsersUpgradeCommand(open userServiceOpener) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Move a user to the premium tier (resets the image count)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := svc.UpgradeToPremium(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("upgrade %s: %w", email, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Upgraded %s to premium\n", user.Email)
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func printUser(w io.Writer, u *domain.User) {
	q := u.Quota()
	fmt.Fprintf(w, "ID:         %s\n", u.ID)
	fmt.Fprintf(w, "Email:      %s\n", u.Email)
	fmt.Fprintf(w, "Name:       %s\n", u.Name)
	fmt.Fprintf(w, "Tier:       %s\n", u.Tier)
	fmt.Fprintf(w, "Images:     %d / %d (%d remaining)\n", q.Used, q.Limit, q.Remaining)
	fmt.Fprintf(w, "Created:    %s\n", u.CreatedAt.Format("2006-01-02 15:04:05 MST"))
}
