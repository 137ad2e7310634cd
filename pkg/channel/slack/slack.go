// Package slack provides a Slack bot channel for InspiraAI using Socket Mode.
package slack

import (
	"context"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// Generator is the quote capability the bot needs.
type Generator interface {
	Generate(ctx context.Context, topic string) string
}

// poster is the subset of *slack.Client used to reply.
type poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

var mentionRe = regexp.MustCompile(`<@[A-Z0-9]+(\|[^>]*)?>`)

// Bot is the Slack Socket Mode bot for InspiraAI. It answers app mentions in
// a thread and the /quote slash command in the invoking channel.
type Bot struct {
	socketClient *socketmode.Client
	post         poster
	quotes       Generator
	log          logrus.FieldLogger
}

// NewBot creates a new Slack Socket Mode bot.
// Connection state is reported through logger by the event loop.
func NewBot(botToken, appToken string, quotes Generator, logger logrus.FieldLogger) *Bot {
	api := slack.New(
		botToken,
		slack.OptionAppLevelToken(appToken),
	)

	return &Bot{
		socketClient: socketmode.New(api),
		post:         api,
		quotes:       quotes,
		log:          logger,
	}
}

// Name returns the channel name.
func (b *Bot) Name() string { return "slack" }

// Run connects to Slack via Socket Mode and processes events.
func (b *Bot) Run(ctx context.Context) error {
	go b.eventLoop(ctx)
	b.log.Info("Slack bot connecting via Socket Mode...")
	return b.socketClient.RunContext(ctx)
}

func (b *Bot) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socketClient.Events:
			if !ok {
				return
			}
			b.handleEvent(ctx, evt)
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		b.log.Info("Slack: connecting...")
	case socketmode.EventTypeConnected:
		b.log.Info("Slack: connected")
	case socketmode.EventTypeConnectionError:
		b.log.Warn("Slack: connection error, will retry...")
	case socketmode.EventTypeEventsAPI:
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.socketClient.Ack(*evt.Request)

		if eventsAPIEvent.Type == slackevents.CallbackEvent {
			b.handleCallbackEvent(ctx, eventsAPIEvent.InnerEvent)
		}
	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		// Slack expects the ack within three seconds; the quote follows as a
		// regular message.
		b.socketClient.Ack(*evt.Request)
		go b.handleSlashCommand(ctx, cmd)
	case socketmode.EventTypeInteractive:
		b.socketClient.Ack(*evt.Request)
	}
}

func (b *Bot) handleCallbackEvent(ctx context.Context, innerEvent slackevents.EventsAPIInnerEvent) {
	switch ev := innerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		go b.handleMention(ctx, ev)
	}
}

func (b *Bot) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) {
	topic := stripMentions(ev.Text)

	threadTS := ev.TimeStamp
	if ev.ThreadTimeStamp != "" {
		threadTS = ev.ThreadTimeStamp
	}

	b.log.WithFields(logrus.Fields{"channel": ev.Channel, "user": ev.User}).Debug("Slack: mention received")
	b.postThread(ev.Channel, threadTS, b.quotes.Generate(ctx, topic))
}

func (b *Bot) handleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	b.log.WithFields(logrus.Fields{"channel": cmd.ChannelID, "user": cmd.UserID, "command": cmd.Command}).
		Debug("Slack: slash command received")

	result := b.quotes.Generate(ctx, strings.TrimSpace(cmd.Text))
	_, _, err := b.post.PostMessage(cmd.ChannelID, slack.MsgOptionText(result, false))
	if err != nil {
		b.log.WithError(err).Errorf("Slack: failed to post message to %s", cmd.ChannelID)
	}
}

func (b *Bot) postThread(channel, threadTS, text string) {
	_, _, err := b.post.PostMessage(channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS),
	)
	if err != nil {
		b.log.WithError(err).Errorf("Slack: failed to post message to %s", channel)
	}
}

// stripMentions removes user mentions such as <@U123ABC> from text.
func stripMentions(text string) string {
	return strings.Join(strings.Fields(mentionRe.ReplaceAllString(text, " ")), " ")
}
