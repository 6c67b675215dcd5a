package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/okarabulut/xtivi/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the default configuration",
	Long: `Dump the default configuration values in YAML format.

Redirect this output to a file to create a configuration template:

  xtivi config dump > config.yaml

Configuration can be set via:
  - Config file (.xtivi.yaml in $HOME or the working directory, /etc/xtivi)
  - Environment variables with the XTIVI_ prefix and underscores for
    nesting, e.g. server.port -> XTIVI_SERVER_PORT
  - Command-line flags (for some options)`,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
}

func runConfigDump(cmd *cobra.Command, args []string) error {
	v := viper.New()
	config.SetDefaults(v)

	data, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling configuration: %w", err)
	}

	fmt.Print(string(data))
	return nil
}
