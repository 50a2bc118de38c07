package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yardline/yardline/internal/backup"
	"github.com/yardline/yardline/internal/duckdb"
	"github.com/yardline/yardline/internal/httpserver"
	"github.com/yardline/yardline/internal/logging"
	"github.com/yardline/yardline/internal/socketrpc"
)

const shutdownGrace = 10 * time.Second

func newServeCmd(load func(*cobra.Command) (appConfig, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the records service (socket RPC and HTTP API)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("socket-path", "", "Unix socket for the console")
	cmd.Flags().String("api-addr", "", "HTTP API listen address")
	return cmd
}

func openStore(cfg appConfig, logger zerolog.Logger) (*duckdb.Store, error) {
	store, err := duckdb.NewStore(cfg.DBPath,
		duckdb.WithQueryTimeout(cfg.QueryTimeout),
		duckdb.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB at %s: %w", cfg.DBPath, err)
	}
	return store, nil
}

// runServer serves the store over the socket and, when enabled, HTTP until
// SIGINT or SIGTERM. A second signal forces exit.
func runServer(parent context.Context, cfg appConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	logger, closer := logging.Setup("yardline", cfg.LogLevel)
	defer closer.Close()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	backups, err := backup.NewManager(store, cfg.Backup, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize backups: %w", err)
	}

	if cfg.APIEnabled {
		api := httpserver.NewServer(cfg.APIAddr, store, logger)
		if err := api.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer api.Stop()
	}

	sock := socketrpc.NewServer(cfg.SocketPath, store, logger)
	if err := sock.Start(); err != nil {
		return fmt.Errorf("failed to start socket server: %w", err)
	}
	defer sock.Stop()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		logger.Info().Msg("shutdown requested")
		cancel()

		deadline := time.NewTimer(shutdownGrace)
		defer deadline.Stop()
		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Remove(cfg.SocketPath)
		os.Exit(1)
	}()

	printStartupBanner(cfg)

	g, gctx := errgroup.WithContext(ctx)
	if backups != nil {
		g.Go(func() error { return backups.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("stopped")
	return nil
}

func printStartupBanner(cfg appConfig) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")
	row := func(mark, label, value string) string {
		return fmt.Sprintf("    %s  %-14s %s", mark, label, value)
	}

	lines := []string{
		"",
		cyan.Bold(true).Render("    yardline"),
		"    " + dim.Render("v"+version),
		"",
		bold.Render("    Gateway"),
		"",
	}
	if cfg.APIEnabled {
		lines = append(lines, row(check, "HTTP API", cyan.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, row(dot, "HTTP API", dim.Render("disabled")))
	}
	lines = append(lines, row(check, "Unix Socket", cyan.Render(shortenPath(cfg.SocketPath))), "")

	lines = append(lines, bold.Render("    Storage"), "")
	lines = append(lines, row(check, "Database", dim.Render(shortenPath(cfg.DBPath))))
	if cfg.Backup.Enabled {
		lines = append(lines, row(check, "Snapshots", dim.Render(fmt.Sprintf("%s every %s",
			shortenPath(cfg.Backup.LocalDir), cfg.Backup.Interval))))
	} else {
		lines = append(lines, row(dot, "Snapshots", dim.Render("disabled")))
	}
	lines = append(lines, "")

	if cfg.ConfigPath != "" {
		lines = append(lines, row(check, "Config File", dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, row(dot, "Config File", dim.Render("default (no file)")))
	}
	lines = append(lines, "", "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"), "")

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
