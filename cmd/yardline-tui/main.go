package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/yardline/yardline/internal/apiclient"
	"github.com/yardline/yardline/internal/logging"
	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/socketrpc"
	"github.com/yardline/yardline/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var socketPath string
	var apiURL string
	var transport string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/yardline/config.yml)")
	flag.StringVar(&socketPath, "socket", "", "override socket path to connect to the yardline service")
	flag.StringVar(&apiURL, "api", "", "override HTTP API base url")
	flag.StringVar(&transport, "transport", "", "socket or http")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Yardline Console\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if socketPath != "" {
		cfg.SocketPath = socketPath
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
		if transport == "" {
			transport = transportHTTP
		}
	}
	if transport != "" {
		cfg.Transport = transport
	}
	if err := cfg.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// connect picks the backend for the configured transport. The returned
// closer is nil when there is nothing to release.
func connect(cfg cliConfig, logger zerolog.Logger) (model.Backend, func() error, error) {
	if cfg.Transport == transportHTTP {
		c, err := apiclient.New(cfg.APIURL, apiclient.Options{Timeout: cfg.FetchTimeout, Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	}

	c, err := socketrpc.Dial(cfg.SocketPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot connect to yardline service at %s: %w\nIs the service running? Start it with: yardline serve", cfg.SocketPath, err)
	}
	return c, c.Close, nil
}

func runTUI(cfg cliConfig) error {
	logger, closer := logging.Setup("yardline-tui", cfg.LogLevel)
	defer closer.Close()

	backend, closeBackend, err := connect(cfg, logger)
	if err != nil {
		return err
	}
	if closeBackend != nil {
		defer closeBackend()
	}

	source := cfg.Transport
	if cfg.Transport == transportHTTP {
		source = cfg.APIURL
	}
	app := tui.NewApp(tui.Config{
		Backend:         backend,
		RefreshInterval: cfg.RefreshInterval,
		PageSize:        cfg.PageSize,
		FetchTimeout:    cfg.FetchTimeout,
		Logger:          logger,
		DataSource:      source,
	})
	logger.Info().Str("transport", cfg.Transport).Msg("console started")

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("console requires a real terminal")
		}
		return fmt.Errorf("error running console: %w", err)
	}
	return nil
}
