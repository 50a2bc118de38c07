package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yardline/yardline/internal/httpserver"
	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/socketrpc"
)

const (
	transportSocket = "socket"
	transportHTTP   = "http"

	defaultFetchTimeout = 10 * time.Second
)

// cliConfig holds only console-relevant configuration.
type cliConfig struct {
	Transport       string        `mapstructure:"transport"`
	SocketPath      string        `mapstructure:"socket-path"`
	APIURL          string        `mapstructure:"api-url"`
	RefreshInterval time.Duration `mapstructure:"refresh-interval"`
	FetchTimeout    time.Duration `mapstructure:"fetch-timeout"`
	PageSize        int           `mapstructure:"page-size"`
	LogLevel        string        `mapstructure:"log-level"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("YARDLINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("transport", transportSocket)
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("api-url", "http://"+httpserver.DefaultAddr)
	v.SetDefault("refresh-interval", model.DefaultRefreshInterval)
	v.SetDefault("fetch-timeout", defaultFetchTimeout)
	v.SetDefault("page-size", model.DefaultPageSize)
	v.SetDefault("log-level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "yardline", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c cliConfig) validate() error {
	switch {
	case c.Transport != transportSocket && c.Transport != transportHTTP:
		return fmt.Errorf("invalid transport %q (want %s or %s)", c.Transport, transportSocket, transportHTTP)
	case c.RefreshInterval <= 0:
		return fmt.Errorf("invalid refresh-interval: %s", c.RefreshInterval)
	case !slices.Contains(model.PageSizes, c.PageSize):
		return fmt.Errorf("invalid page-size %d (want one of %v)", c.PageSize, model.PageSizes)
	}
	return nil
}
