package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	database "github.com/sebuszqo/MyFiance/db"
	"github.com/sebuszqo/MyFiance/internal/config"
	"github.com/sebuszqo/MyFiance/internal/demo"
	"github.com/sebuszqo/MyFiance/internal/finance/domain"
	"github.com/sebuszqo/MyFiance/internal/finance/infrastructure"
	"github.com/sebuszqo/MyFiance/internal/password"
	"github.com/sebuszqo/MyFiance/internal/user"
)

// openStore loads configuration and connects to the database. Callers close the store.
var openStore = func() (*config.Config, *database.DBService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	store, err := database.NewDBService(cfg.DBConnectionString)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

func newRootCommand(stdin io.Reader) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "myfiancectl",
		Short: "Administrative tasks for the MyFiance API",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				return os.Setenv(config.FileEnv, configPath)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")

	rootCmd.AddCommand(
		newMigrateCommand(),
		newSeedCategoriesCommand(),
		newCreateUserCommand(stdin),
		newResetDemoCommand(),
	)
	return rootCmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and seed the default categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			inserted, err := store.SeedCategories(cmd.Context(), domain.DefaultCategories)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date, inserted %d categories\n", inserted)
			return nil
		},
	}
}

func newSeedCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-categories",
		Short: "Insert the default categories into an empty categories table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			inserted, err := store.SeedCategories(cmd.Context(), domain.DefaultCategories)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d categories\n", inserted)
			return nil
		},
	}
}

func newCreateUserCommand(stdin io.Reader) *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Register a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pass == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				var err error
				pass, err = readPassword(stdin)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if strings.TrimSpace(pass) == "" {
				return fmt.Errorf("password cannot be empty")
			}

			cfg, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			users := user.NewUserService(user.NewUserRepository(store.DB), password.NewBcrypt(cfg.BcryptCost))
			created, err := users.Register(cmd.Context(), email, pass)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s created with ID %d\n", created.Email, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address of the new user")
	cmd.Flags().StringVar(&pass, "password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newResetDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-demo",
		Short: "Create the demo account if needed and restore its sample history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			return resetDemo(cmd.Context(), cmd.OutOrStdout(), cfg, store)
		},
	}
}

func resetDemo(ctx context.Context, out io.Writer, cfg *config.Config, store *database.DBService) error {
	users := user.NewUserService(user.NewUserRepository(store.DB), password.NewBcrypt(cfg.BcryptCost))
	account := demo.NewAccount(cfg.Demo.Email, cfg.Demo.Password, users, infrastructure.NewTransactionRepository(store.DB))

	u, err := account.Bootstrap(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Demo account %s reset\n", u.Email)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
