// Package inspira is the top-level entry point for InspiraAI, an
// AI-powered quote generator.
//
// Use the Builder to compose an application:
//
//	app, err := inspira.NewBuilder().
//	    WithConfig(inspira.Config{APIKey: key}).
//	    Build()
//	app.Start(ctx)
//
// Or bring your own provider and channels:
//
//	app, err := inspira.NewBuilder().
//	    WithProvider(myProvider).
//	    WithChannel(myChannel).
//	    Build()
package inspira

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inspira-ai/inspira/internal/httpapi"
	"github.com/inspira-ai/inspira/pkg/channel"
	"github.com/inspira-ai/inspira/pkg/channel/slack"
	"github.com/inspira-ai/inspira/pkg/channel/telegram"
	"github.com/inspira-ai/inspira/pkg/llm"
	"github.com/inspira-ai/inspira/pkg/llm/anthropic"
	"github.com/inspira-ai/inspira/pkg/llm/gemini"
	"github.com/inspira-ai/inspira/pkg/llm/openai"
	"github.com/inspira-ai/inspira/pkg/quote"
)

// Provider names understood by Config.Provider.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds top-level configuration for an InspiraAI application.
type Config struct {
	// ServerAddr is the address the HTTP server listens on (default ":7860").
	ServerAddr string

	// Provider selects the backend when no provider is injected
	// ("gemini" default, "openai" or "anthropic").
	Provider string

	// Model overrides the provider's default model.
	Model string

	// APIKey is the credential for the selected provider.
	APIKey string

	// Quote carries the generation and safety settings. The zero value
	// means quote.DefaultConfig().
	Quote quote.Config

	// TelegramBotToken enables the Telegram channel when set.
	TelegramBotToken string

	// SlackBotToken and SlackAppToken enable the Slack channel when both are set.
	SlackBotToken string
	SlackAppToken string
}

// Builder constructs an InspiraAI App.
type Builder struct {
	config   Config
	provider llm.Provider
	log      logrus.FieldLogger
	picker   quote.Picker
	channels []channel.Channel
}

// NewBuilder creates a new Builder with sensible defaults.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfig sets the application configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithProvider sets the text-generation provider. Config.Provider, Model and
// APIKey are ignored when a provider is set.
func (b *Builder) WithProvider(p llm.Provider) *Builder {
	b.provider = p
	return b
}

// WithLogger sets the logger shared by every component.
func (b *Builder) WithLogger(l logrus.FieldLogger) *Builder {
	b.log = l
	return b
}

// WithPicker sets the prompt template chooser.
func (b *Builder) WithPicker(p quote.Picker) *Builder {
	b.picker = p
	return b
}

// WithChannel adds a channel (Slack, Telegram, etc.) to the application.
func (b *Builder) WithChannel(ch channel.Channel) *Builder {
	b.channels = append(b.channels, ch)
	return b
}

// Build creates the App. Missing components are filled with defaults.
func (b *Builder) Build() (*App, error) {
	if err := applyDefaults(b); err != nil {
		return nil, err
	}

	opts := []quote.Option{quote.WithLogger(b.log)}
	if b.picker != nil {
		opts = append(opts, quote.WithPicker(b.picker))
	}
	quotes := quote.New(b.config.Quote, b.provider, opts...)

	channels := append([]channel.Channel(nil), b.channels...)
	if b.config.SlackBotToken != "" && b.config.SlackAppToken != "" {
		channels = append(channels, slack.NewBot(b.config.SlackBotToken, b.config.SlackAppToken, quotes, b.log))
		b.log.Info("Slack bot enabled (Socket Mode)")
	}
	if b.config.TelegramBotToken != "" {
		tg, err := telegram.NewBot(b.config.TelegramBotToken, quotes, quote.ExampleTopics, b.log)
		if err != nil {
			b.log.WithError(err).Warn("Failed to initialize Telegram bot")
		} else {
			channels = append(channels, tg)
			b.log.Info("Telegram bot enabled (long polling)")
		}
	}

	return &App{
		config:   b.config,
		quotes:   quotes,
		handler:  httpapi.New(quotes, b.log),
		channels: channels,
		log:      b.log,
	}, nil
}

// App is a running InspiraAI application.
type App struct {
	config   Config
	quotes   *quote.Handler
	handler  *httpapi.Handler
	channels []channel.Channel
	log      logrus.FieldLogger
}

// Quotes returns the quote handler for direct access.
func (a *App) Quotes() *quote.Handler { return a.quotes }

// Handler returns the HTTP handler serving the web form and API.
func (a *App) Handler() http.Handler { return a.handler.Router() }

// Channels returns the channels started by Start.
func (a *App) Channels() []channel.Channel { return a.channels }

// Start starts the HTTP server and all channels. Blocks until ctx is done.
func (a *App) Start(ctx context.Context) error {
	for _, ch := range a.channels {
		go func() {
			if err := ch.Run(ctx); err != nil {
				a.log.WithError(err).Errorf("%s channel error", ch.Name())
			}
		}()
	}

	srv := a.newServer()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.log.WithField("provider", a.quotes.Provider().Name()).
		Infof("InspiraAI server listening on %s", a.config.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// readHeaderTimeout bounds how long a client may take to send request headers.
const readHeaderTimeout = 10 * time.Second

func (a *App) newServer() *http.Server {
	return &http.Server{
		Addr:              a.config.ServerAddr,
		Handler:           a.handler.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// applyDefaults fills in missing fields on the builder with sensible defaults.
func applyDefaults(b *Builder) error {
	if b.config.ServerAddr == "" {
		b.config.ServerAddr = ":7860"
	}
	if b.config.Provider == "" {
		b.config.Provider = ProviderGemini
	}
	if b.config.Quote.Generation == (llm.GenerationConfig{}) && b.config.Quote.Safety == nil {
		b.config.Quote = quote.DefaultConfig()
	}
	if b.log == nil {
		b.log = logrus.StandardLogger()
	}

	if b.provider == nil {
		p, err := providerFromConfig(b.config)
		if err != nil {
			return fmt.Errorf("initializing provider: %w", err)
		}
		b.provider = p
	}

	return nil
}

// providerFromConfig creates the provider named in cfg.
func providerFromConfig(cfg Config) (llm.Provider, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return gemini.New(context.Background(), cfg.APIKey, cfg.Model)
	case ProviderOpenAI:
		return openai.New(cfg.APIKey, cfg.Model)
	case ProviderAnthropic:
		return anthropic.New(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
