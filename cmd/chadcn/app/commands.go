// Package app provides the cobra commands of the chadcn binary.
package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chadcn/registry-catalog/internal/config"
	"github.com/chadcn/registry-catalog/internal/logger"
	"github.com/chadcn/registry-catalog/internal/versions"
)

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "chadcn",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Short:             "chadcn registry catalog",
		Long: `chadcn serves a catalog of community UI component registries: a listing
page, a detail page per registry and a JSON API over the same data.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initLogger()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	for _, name := range []string{"config", "debug"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			logger.Fatalf("Failed to bind %s flag: %v", name, err)
		}
	}
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		newServeCmd(),
		newRegistriesCmd(),
		newThemeCmd(),
		newMigrateCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// initLogger reads CHADCN_LOG_LEVEL; --debug forces debug level with the
// console encoder.
func initLogger() error {
	opts := logger.Options{Level: viper.GetString("log_level")}
	if viper.GetBool("debug") {
		opts.Level = "debug"
		opts.Development = true
	}
	return logger.Initialize(opts)
}

// loadConfig loads the file named by --config or CHADCN_CONFIG.
func loadConfig() (*config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		return nil, fmt.Errorf("a configuration file is required (--config or %s_CONFIG)", config.EnvPrefix)
	}
	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}

			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "chadcn %s (commit %s, built %s, %s %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return nil
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}
