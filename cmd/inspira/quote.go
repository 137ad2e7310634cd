package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inspira-ai/inspira"
	"github.com/inspira-ai/inspira/pkg/quote"
)

var quoteJSON bool

var quoteCmd = &cobra.Command{
	Use:   "quote TOPIC...",
	Short: "Generate a quote for a topic",
	Long: `Generate a single quote and print it. Words are joined into one topic:
  inspira quote the beauty of silence`,
	RunE: runQuote,
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List example topics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, ex := range quote.ExampleTopics {
			fmt.Fprintln(cmd.OutOrStdout(), ex)
		}
		return nil
	},
}

func init() {
	quoteCmd.Flags().BoolVar(&quoteJSON, "json", false, "Print the result as JSON with its outcome")
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(examplesCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Chat channels are not started for a one-off quote.
	appCfg := appConfig(cfg)
	appCfg.TelegramBotToken, appCfg.SlackBotToken, appCfg.SlackAppToken = "", "", ""

	app, err := inspira.NewBuilder().
		WithConfig(appCfg).
		WithLogger(logrus.StandardLogger()).
		Build()
	if err != nil {
		return err
	}

	res := app.Quotes().GenerateResult(context.Background(), strings.Join(args, " "))
	if quoteJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	return nil
}
