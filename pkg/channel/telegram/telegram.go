// Package telegram provides a Telegram bot channel for InspiraAI.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Generator is the quote capability the bot needs.
type Generator interface {
	Generate(ctx context.Context, topic string) string
}

// sender is the subset of *tgbotapi.BotAPI used to reply.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot is the Telegram bot for InspiraAI. Every plain-text message is treated
// as a topic.
type Bot struct {
	api      *tgbotapi.BotAPI
	send     sender
	quotes   Generator
	examples []string
	log      logrus.FieldLogger
}

// NewBot creates a new Telegram bot. It contacts Telegram to verify the token.
func NewBot(token string, quotes Generator, examples []string, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating Telegram bot: %w", err)
	}

	log.Infof("Telegram bot authorized as @%s", api.Self.UserName)

	return &Bot{
		api:      api,
		send:     api,
		quotes:   quotes,
		examples: examples,
		log:      log,
	}, nil
}

// Name returns the channel name.
func (b *Bot) Name() string { return "telegram" }

// Run starts the long-polling loop. Blocks until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	b.log.Info("Telegram bot listening for messages...")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				go b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	chatID := msg.Chat.ID

	if !strings.HasPrefix(text, "/") {
		b.replyQuote(ctx, chatID, msg.MessageID, text)
		return
	}

	cmd, args := parseCommand(text)
	switch cmd {
	case "/start", "/help":
		b.sendHelp(chatID, msg.MessageID)
	case "/examples":
		b.sendExamples(chatID, msg.MessageID)
	case "/quote":
		// An empty topic is answered by the handler itself.
		b.replyQuote(ctx, chatID, msg.MessageID, args)
	default:
		b.sendReply(chatID, msg.MessageID, fmt.Sprintf("Unknown command `%s`\\. Try /help", escapeMarkdown(cmd)))
	}
}

// parseCommand splits "/cmd@botname rest of text" into "/cmd" and "rest of text".
func parseCommand(text string) (string, string) {
	cmd, args, _ := strings.Cut(text, " ")
	cmd = strings.ToLower(cmd)
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd, strings.TrimSpace(args)
}

func (b *Bot) replyQuote(ctx context.Context, chatID int64, replyTo int, topic string) {
	b.sendChatAction(chatID)
	result := b.quotes.Generate(ctx, topic)
	b.sendReply(chatID, replyTo, escapeMarkdown(result))
}

func (b *Bot) sendHelp(chatID int64, replyTo int) {
	b.sendReply(chatID, replyTo, ""+
		"*InspiraAI* \\- a quote for any topic\\.\n\n"+
		"Just send a topic, for example:\n"+
		"`the power of dreams`\n\n"+
		"*Commands:*\n"+
		"/quote \\<topic\\> \\-\\- Get a quote\n"+
		"/examples \\-\\- Show example topics\n"+
		"/help \\-\\- Show this message")
}

func (b *Bot) sendExamples(chatID int64, replyTo int) {
	var sb strings.Builder
	sb.WriteString("*Try one of these:*\n")
	for _, ex := range b.examples {
		sb.WriteString("`/quote ")
		sb.WriteString(escapeMarkdown(ex))
		sb.WriteString("`\n")
	}
	b.sendReply(chatID, replyTo, sb.String())
}

func (b *Bot) sendChatAction(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	b.send.Send(action)
}

func (b *Bot) sendReply(chatID int64, replyTo int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := b.send.Send(msg); err != nil {
		b.log.WithError(err).Warn("Telegram: failed to send message, retrying as plain text")
		msg.ParseMode = ""
		msg.Text = stripMarkdown(text)
		if _, err := b.send.Send(msg); err != nil {
			b.log.WithError(err).Error("Telegram: failed to send message")
		}
	}
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
		"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
		">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
		"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
		".", "\\.", "!", "\\!", "<", "\\<",
	)
	return replacer.Replace(s)
}

func stripMarkdown(s string) string {
	r := strings.NewReplacer(
		"\\\\", "\\",
		"\\*", "*", "\\_", "_", "\\[", "[", "\\]", "]",
		"\\(", "(", "\\)", ")", "\\~", "~", "\\`", "`",
		"\\>", ">", "\\#", "#", "\\+", "+", "\\-", "-",
		"\\=", "=", "\\|", "|", "\\{", "{", "\\}", "}",
		"\\.", ".", "\\!", "!", "\\<", "<",
	)
	return r.Replace(s)
}
