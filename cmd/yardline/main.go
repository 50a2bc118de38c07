package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "yardline",
		Short:         "Livestock intake, slaughter and carcass records service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $HOME/.config/yardline/config.yml)")
	root.PersistentFlags().String("db-path", "", "DuckDB database file")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	// load resolves config for a subcommand, letting explicitly set flags win.
	load := func(cmd *cobra.Command) (appConfig, error) {
		return loadConfig(configPath, func(v *viper.Viper) error {
			return bindChangedFlags(v, cmd)
		})
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newSeedCmd(load),
		newBackupCmd(load),
		newVersionCmd(),
	)
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := load(cmd)
		if err != nil {
			return err
		}
		return runServer(cmd.Context(), cfg)
	}
	return root
}

// bindChangedFlags copies flags the user actually set into v. Unset flags
// are skipped so their zero values don't mask file and env settings.
func bindChangedFlags(v *viper.Viper, cmd *cobra.Command) error {
	fs := cmd.Flags()
	for _, name := range []string{"db-path", "log-level", "socket-path", "api-addr"} {
		if !fs.Changed(name) {
			continue
		}
		val, err := fs.GetString(name)
		if err != nil {
			return err
		}
		v.Set(name, val)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Yardline - Processing Records Service\n")
			fmt.Fprintf(out, "  Version:    %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Built:      %s\n", buildTime)
			fmt.Fprintf(out, "  Go version: %s\n", goVersion)
		},
	}
}
