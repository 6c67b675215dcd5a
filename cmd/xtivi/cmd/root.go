// Package cmd implements the CLI commands for xtivi.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/okarabulut/xtivi/internal/config"
	"github.com/okarabulut/xtivi/internal/observability"
	"github.com/okarabulut/xtivi/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "xtivi",
	Short:   "Xtream panel browser and playback resolver",
	Version: version.Short(),
	Long: `xtivi is a web service for browsing Xtream-Codes IPTV panels and
playing their content in a browser.

It validates panel credentials, serves the live/VOD/series catalogs,
derives candidate stream URLs for any catalog item, and drives an
automatic fallback cascade across container formats when a stream
refuses to play.`,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initLogging()
	}

	// Flags are checked with Changed() rather than bound to viper, which
	// preserves the priority: CLI flag > env var > config > default.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.xtivi.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/xtivi")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".xtivi")
	}

	viper.SetEnvPrefix("XTIVI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// initLogging builds the slog logger with credential redaction applied.
func initLogging() error {
	level := viper.GetString("logging.level")
	format := viper.GetString("logging.format")

	if rootCmd.PersistentFlags().Changed("log-level") {
		level, _ = rootCmd.PersistentFlags().GetString("log-level")
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		format, _ = rootCmd.PersistentFlags().GetString("log-format")
	}

	if level == "" {
		level = "info"
	}
	if format == "" {
		format = "json"
	}
	if strings.EqualFold(level, "warning") {
		level = "warn"
	}

	logCfg := config.LoggingConfig{
		Level:  strings.ToLower(level),
		Format: strings.ToLower(format),
	}

	logger := observability.NewLoggerWithWriter(logCfg, os.Stderr)
	observability.SetDefault(logger)

	return nil
}
