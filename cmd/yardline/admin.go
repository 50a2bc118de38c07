package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yardline/yardline/internal/backup"
	"github.com/yardline/yardline/internal/duckdb/migrate"
	"github.com/yardline/yardline/internal/logging"
	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/seed"
	"github.com/yardline/yardline/internal/socketrpc"
)

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newMigrateCmd(load func(*cobra.Command) (appConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and report the schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

			// Opening the store applies anything pending.
			store, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			current, pending, err := migrate.NewRunner(store.DB(), logger).Status(cmdContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d, %d pending\n", current, pending)
			return nil
		},
	}
}

func newSeedCmd(load func(*cobra.Command) (appConfig, error)) *cobra.Command {
	var (
		file   string
		remote bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load suppliers and animals from a YAML fixture",
		Long: "Load suppliers and animals from a YAML fixture. Without --file the built-in\n" +
			"demo fixture is used. Records that already exist are skipped, so seeding twice\n" +
			"is harmless. Use --remote while the service is running, since it holds the\n" +
			"database lock.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

			fixture := seed.Default()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				fixture, err = seed.Load(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
			}

			var backend model.Backend
			if remote {
				client, err := socketrpc.Dial(cfg.SocketPath)
				if err != nil {
					return fmt.Errorf("cannot connect to yardline service at %s: %w", cfg.SocketPath, err)
				}
				defer client.Close()
				backend = client
			} else {
				store, err := openStore(cfg, logger)
				if err != nil {
					return err
				}
				defer store.Close()
				backend = store
			}

			res, err := seed.Apply(cmdContext(cmd), backend, fixture)
			if err != nil {
				return err
			}
			logger.Info().
				Int("suppliers", res.Suppliers).
				Int("animals", res.Animals).
				Int("skipped", res.Skipped).
				Msg("seeded")
			fmt.Fprintf(cmd.OutOrStdout(), "added %d suppliers, %d animals (%d skipped)\n",
				res.Suppliers, res.Animals, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (default: built-in demo data)")
	cmd.Flags().BoolVar(&remote, "remote", false, "seed through the running service's socket")
	return cmd
}

func newBackupCmd(load func(*cobra.Command) (appConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Take one local snapshot of the database now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

			store, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			bc := cfg.Backup
			bc.Enabled = true
			m, err := backup.NewManager(store, bc, logger)
			if err != nil {
				return err
			}
			path, err := m.RunOnce(cmdContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
