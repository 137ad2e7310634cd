package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inspira-ai/inspira"
	"github.com/inspira-ai/inspira/internal/config"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web form, JSON API and configured chat bots",
	Long: `Start the InspiraAI server.

The web form is served on INSPIRA_HOST:PORT (default 0.0.0.0:7860).
Telegram and Slack bots start when their tokens are configured.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides "+config.EnvHost+")")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides "+config.EnvPort+")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		if servePort < 0 || servePort > 65535 {
			return fmt.Errorf("port %d out of range", servePort)
		}
		cfg.Port = servePort
	}

	app, err := inspira.NewBuilder().
		WithConfig(appConfig(cfg)).
		WithLogger(logrus.StandardLogger()).
		Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.WithFields(logrus.Fields{
		"provider": cfg.Provider,
		"addr":     cfg.Addr(),
	}).Info("Starting InspiraAI")

	return app.Start(ctx)
}

// appConfig maps resolved settings onto the application config.
func appConfig(cfg *config.Config) inspira.Config {
	return inspira.Config{
		ServerAddr:       cfg.Addr(),
		Provider:         cfg.Provider,
		Model:            cfg.Model,
		APIKey:           cfg.APIKey(),
		TelegramBotToken: cfg.TelegramBotToken,
		SlackBotToken:    cfg.SlackBotToken,
		SlackAppToken:    cfg.SlackAppToken,
	}
}
