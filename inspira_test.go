package inspira

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inspira-ai/inspira/pkg/llm"
	"github.com/inspira-ai/inspira/pkg/quote"
)

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) Generate(context.Context, llm.Request) (llm.Response, error) {
	return llm.Candidates("  \"Small steps still move you forward.\"  "), nil
}

type stubChannel struct {
	ran atomic.Bool
}

func (c *stubChannel) Name() string { return "stub" }

func (c *stubChannel) Run(ctx context.Context) error {
	c.ran.Store(true)
	<-ctx.Done()
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestBuild_Defaults(t *testing.T) {
	app, err := NewBuilder().
		WithProvider(stubProvider{}).
		WithLogger(quietLogger()).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if app.config.ServerAddr != ":7860" {
		t.Errorf("ServerAddr = %q, want :7860", app.config.ServerAddr)
	}
	if app.config.Provider != ProviderGemini {
		t.Errorf("Provider = %q, want gemini", app.config.Provider)
	}
	want := quote.DefaultConfig()
	if app.config.Quote.Generation != want.Generation || len(app.config.Quote.Safety) != len(want.Safety) {
		t.Errorf("Quote config = %+v, want defaults", app.config.Quote)
	}
	if len(app.Channels()) != 0 {
		t.Errorf("no channels should be enabled without tokens")
	}
	if app.Quotes().Provider().Name() != "stub" {
		t.Errorf("injected provider not used")
	}
}

func TestBuild_ProviderFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  string
	}{
		{name: "openai", cfg: Config{Provider: ProviderOpenAI, APIKey: "sk-test"}, wantName: "openai"},
		{name: "anthropic", cfg: Config{Provider: ProviderAnthropic, APIKey: "sk-ant-test"}, wantName: "anthropic"},
		{name: "missing key", cfg: Config{Provider: ProviderOpenAI}, wantErr: "API key is required"},
		{name: "missing gemini key", cfg: Config{}, wantErr: "API key is required"},
		{name: "unknown", cfg: Config{Provider: "palm", APIKey: "x"}, wantErr: "unknown provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewBuilder().WithConfig(tt.cfg).WithLogger(quietLogger()).Build()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Build() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if got := app.Quotes().Provider().Name(); got != tt.wantName {
				t.Errorf("provider = %q, want %q", got, tt.wantName)
			}
		})
	}
}

func TestApp_HandlerServesQuotes(t *testing.T) {
	app, err := NewBuilder().
		WithProvider(stubProvider{}).
		WithLogger(quietLogger()).
		WithPicker(func(int) int { return 0 }).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/quote", "application/json", strings.NewReader(`{"topic":"persistence"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var res quote.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Text != `"Small steps still move you forward." - InspiraAI` {
		t.Errorf("result = %q", res.Text)
	}
	if res.Outcome != quote.OutcomeQuote {
		t.Errorf("outcome = %q", res.Outcome)
	}
}

func TestApp_StartStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ch := &stubChannel{}
	app, err := NewBuilder().
		WithConfig(Config{ServerAddr: addr}).
		WithProvider(stubProvider{}).
		WithLogger(quietLogger()).
		WithChannel(ch).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Start(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
	deadline = time.Now().Add(5 * time.Second)
	for !ch.ran.Load() {
		if time.Now().After(deadline) {
			t.Fatal("channel was not started")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestApp_ServerBoundsHeaderRead(t *testing.T) {
	app, err := NewBuilder().WithProvider(stubProvider{}).WithLogger(quietLogger()).Build()
	if err != nil {
		t.Fatal(err)
	}
	srv := app.newServer()
	if srv.ReadHeaderTimeout <= 0 {
		t.Errorf("ReadHeaderTimeout = %v, want a positive bound", srv.ReadHeaderTimeout)
	}
	if srv.Addr != ":7860" {
		t.Errorf("Addr = %q, want :7860", srv.Addr)
	}
}
