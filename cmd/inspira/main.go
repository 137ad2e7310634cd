// InspiraAI
//
// An AI-powered quote generator. Give it a topic, get a quote.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inspira-ai/inspira/internal/config"
)

var (
	version = "dev"

	flagProvider string
	flagModel    string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "inspira",
	Short: "InspiraAI - AI-powered quote generator",
	Long: `InspiraAI turns any topic into a short, original quote.

  inspira config set GOOGLE_API_KEY_INSPI AIza...   Store your API key
  inspira serve                                     Start the web form and chat bots
  inspira quote "the power of dreams"               Print a quote
  inspira examples                                  List example topics`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "Text-generation provider: gemini, openai or anthropic (overrides "+config.EnvProvider+")")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Model name (overrides "+config.EnvModel+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides "+config.EnvLogLevel+")")

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration, applies command-line overrides,
// validates it and configures the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logrus.SetLevel(level)
	return cfg, nil
}

// dataDir returns the directory holding config.env.
func dataDir() string {
	if v := os.Getenv(config.EnvDataDir); v != "" {
		return v
	}
	return config.DefaultDataDir()
}
