package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yardline/yardline/internal/backup"
	"github.com/yardline/yardline/internal/duckdb"
	"github.com/yardline/yardline/internal/httpserver"
	"github.com/yardline/yardline/internal/socketrpc"
)

const (
	defaultQueryTimeout   = duckdb.DefaultQueryTimeout
	defaultBackupInterval = 6 * time.Hour
	defaultBackupKeepLast = 8
	defaultLogLevel       = "info"
)

// appConfig is the server's runtime configuration.
type appConfig struct {
	DBPath       string        `mapstructure:"db-path"`
	SocketPath   string        `mapstructure:"socket-path"`
	APIEnabled   bool          `mapstructure:"api-enabled"`
	APIAddr      string        `mapstructure:"api-addr"`
	QueryTimeout time.Duration `mapstructure:"query-timeout"`
	LogLevel     string        `mapstructure:"log-level"`
	Backup       backup.Config `mapstructure:"backup"`
	ConfigPath   string        `mapstructure:"-"`
}

// loadConfig layers defaults, the optional config file, YARDLINE_* env vars
// and whatever bind registers (command-line flags), lowest to highest.
func loadConfig(configPath string, bind func(v *viper.Viper) error) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".local", "share", "yardline")

	v := viper.New()
	v.SetEnvPrefix("YARDLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db-path", filepath.Join(dataDir, "yardline.duckdb"))
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("api-enabled", true)
	v.SetDefault("api-addr", httpserver.DefaultAddr)
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.interval", defaultBackupInterval)
	v.SetDefault("backup.local-dir", filepath.Join(dataDir, "backups"))
	v.SetDefault("backup.keep-last", defaultBackupKeepLast)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "yardline", "config.yml"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if bind != nil {
		if err := bind(v); err != nil {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if _, err := os.Stat(v.ConfigFileUsed()); err == nil {
		cfg.ConfigPath = v.ConfigFileUsed()
	}

	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.Backup.LocalDir = expandHome(cfg.Backup.LocalDir, home)
	if cfg.QueryTimeout <= 0 {
		return cfg, fmt.Errorf("invalid query-timeout: %s", cfg.QueryTimeout)
	}
	if cfg.APIEnabled && strings.TrimSpace(cfg.APIAddr) == "" {
		return cfg, errors.New("api-addr is required when api-enabled is set")
	}
	return cfg, nil
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
