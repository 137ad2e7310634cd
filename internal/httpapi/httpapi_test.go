package httpapi

import (
	"context"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/inspira-ai/inspira/pkg/quote"
)

// stubGenerator echoes the topic into a canned quote.
type stubGenerator struct {
	mu     sync.Mutex
	topics []string
}

func (s *stubGenerator) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.topics...)
}

func (s *stubGenerator) GenerateResult(_ context.Context, topic string) quote.Result {
	s.mu.Lock()
	s.topics = append(s.topics, topic)
	s.mu.Unlock()
	if strings.TrimSpace(topic) == "" {
		return quote.Result{ID: "id000000", Topic: topic, Text: quote.MsgEmptyTopic, Outcome: quote.OutcomeInputMissing}
	}
	return quote.Result{ID: "id123456", Topic: topic, Text: quote.Format("On " + topic + "."), Outcome: quote.OutcomeQuote}
}

func newTestServer(t *testing.T) (*httptest.Server, *stubGenerator) {
	t.Helper()
	gen := &stubGenerator{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	srv := httptest.NewServer(New(gen, log).Router())
	t.Cleanup(srv.Close)
	return srv, gen
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(b)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("GET /health = %d %q", resp.StatusCode, body)
	}
}

func TestIndex_RendersForm(t *testing.T) {
	srv, gen := newTestServer(t)
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body := html.UnescapeString(readBody(t, resp))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	for _, want := range append([]string{
		"InspiraAI Quote Generator",
		"Enter a topic or phrase for your quote:",
		"Generate Quote",
		"InspiraAI Says:",
	}, quote.ExampleTopics...) {
		if !strings.Contains(body, want) {
			t.Errorf("page does not contain %q", want)
		}
	}
	if topics := gen.seen(); len(topics) != 0 {
		t.Errorf("GET / should not generate, got topics %v", topics)
	}
}

func TestSubmit_ShowsResult(t *testing.T) {
	srv, gen := newTestServer(t)
	resp, err := http.PostForm(srv.URL+"/", url.Values{"topic": {"courage"}})
	if err != nil {
		t.Fatal(err)
	}
	body := html.UnescapeString(readBody(t, resp))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"On courage." - InspiraAI`) {
		t.Errorf("page does not contain the quote:\n%s", body)
	}
	if !strings.Contains(body, `value="courage"`) {
		t.Error("topic input should keep the submitted value")
	}
	if topics := gen.seen(); len(topics) != 1 || topics[0] != "courage" {
		t.Errorf("generator topics = %v", topics)
	}
}

func TestSubmit_EscapesTopic(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.PostForm(srv.URL+"/", url.Values{"topic": {"<script>alert(1)</script>"}})
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("topic was rendered unescaped")
	}
}

func TestAPIQuote(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantResult  string
		wantOutcome quote.Outcome
	}{
		{
			name:        "topic",
			body:        `{"topic":"the sea"}`,
			wantStatus:  http.StatusOK,
			wantResult:  `"On the sea." - InspiraAI`,
			wantOutcome: quote.OutcomeQuote,
		},
		{
			name:        "empty topic",
			body:        `{"topic":"  "}`,
			wantStatus:  http.StatusOK,
			wantResult:  quote.MsgEmptyTopic,
			wantOutcome: quote.OutcomeInputMissing,
		},
		{
			name:       "invalid json",
			body:       `{"topic":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			resp, err := http.Post(srv.URL+"/api/quote", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				var e errorResponse
				if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
					t.Errorf("expected error body, got %+v (%v)", e, err)
				}
				return
			}

			var got quote.Result
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if got.Text != tt.wantResult {
				t.Errorf("result = %q, want %q", got.Text, tt.wantResult)
			}
			if got.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %q, want %q", got.Outcome, tt.wantOutcome)
			}
			if got.ID == "" {
				t.Error("response should carry a request id")
			}
		})
	}
}

func TestAPIExamples(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/examples")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got examplesResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got.Examples) != len(quote.ExampleTopics) {
		t.Fatalf("examples = %v", got.Examples)
	}
	for i, ex := range quote.ExampleTopics {
		if got.Examples[i] != ex {
			t.Errorf("examples[%d] = %q, want %q", i, got.Examples[i], ex)
		}
	}
}
