package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inspira-ai/inspira/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage InspiraAI configuration",
	Long: `Manage InspiraAI configuration (API keys, port, bot tokens).

Configuration is stored in ~/.inspira/config.env and can be overridden
by environment variables.

  inspira config set KEY VALUE      Set a single config value
  inspira config show               Show current configuration
  inspira config path               Print config file path`,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a config value",
	Long: `Set a single configuration value. Example:
  inspira config set GOOGLE_API_KEY_INSPI AIzaxxxxxxxxxxxx`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display all configured values. Secrets are masked.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.FilePath(dataDir()))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	path := config.FilePath(dataDir())

	fileValues, err := config.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	fileValues[key] = value

	if err := config.WriteFile(path, fileValues); err != nil {
		return err
	}

	display := value
	if k, ok := config.FindKey(key); ok && k.Secret {
		display = config.MaskSecret(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, display)
	return nil
}

// runConfigShow displays the current effective configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path := config.FilePath(dataDir())
	fileValues, err := config.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config file: %s\n\n", path)

	for _, k := range config.Keys {
		value := os.Getenv(k.Key)
		source := ""
		if value != "" {
			source = " (from env)"
		} else if fileValues[k.Key] != "" {
			value = fileValues[k.Key]
			source = " (from config file)"
		}

		display := "(not set)"
		if value != "" {
			if k.Secret {
				display = config.MaskSecret(value)
			} else {
				display = value
			}
		}

		fmt.Fprintf(out, "  %-22s %s%s\n", k.Key, display, source)
	}
	return nil
}
