package slack

import (
	"context"
	"errors"
	"io"
	"net/url"
	"runtime"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

type stubGenerator struct {
	mu     sync.Mutex
	topics []string
}

func (s *stubGenerator) Generate(_ context.Context, topic string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, topic)
	return `"Onward." - InspiraAI`
}

type postedMessage struct {
	channel string
	values  url.Values
}

type recordingPoster struct {
	posted []postedMessage
	err    error
}

func (r *recordingPoster) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	_, values, err := slack.UnsafeApplyMsgOptions("", channelID, "", options...)
	if err != nil {
		return "", "", err
	}
	r.posted = append(r.posted, postedMessage{channel: channelID, values: values})
	return channelID, "1700000000.000200", r.err
}

func newTestBot() (*Bot, *recordingPoster, *stubGenerator) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	p := &recordingPoster{}
	g := &stubGenerator{}
	return &Bot{post: p, quotes: g, log: log}, p, g
}

func TestStripMentions(t *testing.T) {
	tests := []struct{ in, want string }{
		{"<@U123ABC> the power of dreams", "the power of dreams"},
		{"<@U123ABC|inspira>   courage  ", "courage"},
		{"hello <@U1> world", "hello world"},
		{"<@U123ABC>", ""},
		{"no mention", "no mention"},
	}
	for _, tt := range tests {
		if got := stripMentions(tt.in); got != tt.want {
			t.Errorf("stripMentions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHandleMention_RepliesInThread(t *testing.T) {
	b, p, g := newTestBot()
	b.handleMention(context.Background(), &slackevents.AppMentionEvent{
		Channel:   "C1",
		User:      "U9",
		Text:      "<@U123ABC> a rainy sunday morning",
		TimeStamp: "1700000000.000100",
	})

	if len(g.topics) != 1 || g.topics[0] != "a rainy sunday morning" {
		t.Fatalf("topics = %v", g.topics)
	}
	if len(p.posted) != 1 {
		t.Fatalf("posted = %d, want 1", len(p.posted))
	}
	msg := p.posted[0]
	if msg.channel != "C1" {
		t.Errorf("channel = %q, want C1", msg.channel)
	}
	if got := msg.values.Get("text"); got != `"Onward." - InspiraAI` {
		t.Errorf("text = %q", got)
	}
	if got := msg.values.Get("thread_ts"); got != "1700000000.000100" {
		t.Errorf("thread_ts = %q", got)
	}
}

func TestHandleMention_KeepsExistingThread(t *testing.T) {
	b, p, _ := newTestBot()
	b.handleMention(context.Background(), &slackevents.AppMentionEvent{
		Channel:         "C1",
		Text:            "<@U123ABC> patience",
		TimeStamp:       "1700000000.000300",
		ThreadTimeStamp: "1700000000.000100",
	})
	if got := p.posted[0].values.Get("thread_ts"); got != "1700000000.000100" {
		t.Errorf("thread_ts = %q, want parent thread", got)
	}
}

func TestHandleMention_EmptyTopicReachesGenerator(t *testing.T) {
	b, p, g := newTestBot()
	b.handleMention(context.Background(), &slackevents.AppMentionEvent{Channel: "C1", Text: "<@U123ABC>"})
	if len(g.topics) != 1 || g.topics[0] != "" {
		t.Errorf("topics = %v", g.topics)
	}
	if len(p.posted) != 1 {
		t.Errorf("posted = %d, want 1", len(p.posted))
	}
}

func TestHandleSlashCommand(t *testing.T) {
	b, p, g := newTestBot()
	b.handleSlashCommand(context.Background(), slack.SlashCommand{
		Command:   "/quote",
		Text:      "  overcoming challenges ",
		ChannelID: "C2",
		UserID:    "U9",
	})

	if len(g.topics) != 1 || g.topics[0] != "overcoming challenges" {
		t.Fatalf("topics = %v", g.topics)
	}
	if len(p.posted) != 1 || p.posted[0].channel != "C2" {
		t.Fatalf("posted = %+v", p.posted)
	}
	if p.posted[0].values.Get("thread_ts") != "" {
		t.Error("slash command reply should not be threaded")
	}
}

func TestPostThread_ErrorIsLogged(t *testing.T) {
	b, p, _ := newTestBot()
	p.err = errors.New("not_in_channel")
	// Must not panic; the failure is only logged.
	b.postThread("C1", "1", "hello")
	if len(p.posted) != 1 {
		t.Errorf("posted = %d, want 1", len(p.posted))
	}
}

func TestNewBot_DoesNotStartGoroutines(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	before := runtime.NumGoroutine()
	for range 20 {
		NewBot("xoxb-test", "xapp-test", &stubGenerator{}, log)
	}
	if after := runtime.NumGoroutine(); after > before+2 {
		t.Errorf("goroutines grew from %d to %d across 20 NewBot calls", before, after)
	}
}
