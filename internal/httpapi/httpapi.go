// Package httpapi serves the InspiraAI web form and JSON API.
package httpapi

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/inspira-ai/inspira/pkg/quote"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// maxTopicBytes bounds the request body read for a topic.
const maxTopicBytes = 4 << 10

// Generator is the quote capability the handlers need.
type Generator interface {
	GenerateResult(ctx context.Context, topic string) quote.Result
}

// Handler provides the HTTP handlers.
type Handler struct {
	quotes   Generator
	examples []string
	log      logrus.FieldLogger
	router   chi.Router
}

// New creates a Handler backed by g.
func New(g Generator, log logrus.FieldLogger) *Handler {
	h := &Handler{
		quotes:   g,
		examples: quote.ExampleTopics,
		log:      log,
	}
	h.router = h.buildRouter()
	return h
}

// Router returns the chi router with all routes mounted.
func (h *Handler) Router() chi.Router { return h.router }

func (h *Handler) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/", h.handleIndex)
	r.Post("/", h.handleSubmit)

	r.Route("/api", func(r chi.Router) {
		r.Post("/quote", h.handleQuote)
		r.Get("/examples", h.handleExamples)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return r
}

// --- Request/Response types ---

type quoteRequest struct {
	Topic string `json:"topic"`
}

type examplesResponse struct {
	Examples []string `json:"examples"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type pageData struct {
	Topic    string
	Result   string
	Examples []string
}

// --- Handlers ---

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, pageData{Examples: h.examples})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTopicBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	topic := r.PostFormValue("topic")
	res := h.quotes.GenerateResult(r.Context(), topic)

	h.renderPage(w, http.StatusOK, pageData{
		Topic:    topic,
		Result:   res.Text,
		Examples: h.examples,
	})
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTopicBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.quotes.GenerateResult(r.Context(), req.Topic))
}

func (h *Handler) handleExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, examplesResponse{Examples: h.examples})
}

// --- Helpers ---

func (h *Handler) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		h.log.WithError(err).Error("Rendering page failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
