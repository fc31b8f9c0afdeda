package webui

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"docinsight/internal/config"
	"docinsight/internal/helper"
	"docinsight/internal/models"
)

//go:embed templates/chat.html
var templateFS embed.FS

// QAService answers a single question; the pipeline's QA engine implements
// it, tests stub it.
type QAService interface {
	Query(ctx context.Context, query string) (*models.Answer, error)
}

type Server struct {
	cfg      *config.Config
	qa       QAService
	page     *template.Template
	markdown goldmark.Markdown
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type askResponse struct {
	SessionID  string            `json:"session_id"`
	Answer     string            `json:"answer"`
	AnswerHTML template.HTML     `json:"answer_html"`
	Citations  []models.Citation `json:"citations"`
}

func NewServer(cfg *config.Config, qa QAService) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/chat.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse chat template: %v", err)
	}
	// GFM so financial tables in answers and snippets render as tables
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			htmlrenderer.WithHardWraps(),
		),
	)
	return &Server{cfg: cfg, qa: qa, page: page, markdown: md}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/api/ask", s.handleAsk)
	r.Get("/health", s.handleHealth)
	r.Get("/llm/ping", s.handleLLMPing)
	return r
}

func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("Web UI listening")
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	sessionID, err := helper.GenerateUUID()
	if err != nil {
		log.Warn().Err(err).Msg("Error generating session id")
	}
	data := struct {
		SessionID string
		Document  string
	}{
		SessionID: sessionID,
		Document:  s.cfg.Storage.Document,
	}
	if err := s.page.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Error rendering chat page")
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID, _ = helper.GenerateUUID()
	}

	log.Info().Str("session", req.SessionID).Str("question", req.Question).Msg("Answering question")

	answer, err := s.qa.Query(r.Context(), req.Question)
	if err != nil {
		log.Error().Err(err).Msg("QA engine failed")
		http.Error(w, "failed to answer question: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(askResponse{
		SessionID:  req.SessionID,
		Answer:     answer.Simplified,
		AnswerHTML: s.renderMarkdown(answer.Text),
		Citations:  answer.Citations,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"ok":true,"service":"docinsight"}`))
}

// handleLLMPing is a lightweight reachability probe for the local model
// server.
func (s *Server) handleLLMPing(w http.ResponseWriter, _ *http.Request) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(s.cfg.InferenceLLM.BaseURL)
	reachable := err == nil && resp.StatusCode < 500
	if resp != nil {
		resp.Body.Close()
	}

	out := map[string]any{
		"ok":               true,
		"ollama_url":       s.cfg.InferenceLLM.BaseURL,
		"ollama_reachable": reachable,
	}
	if !reachable {
		out["note"] = "Ollama not running or model not pulled yet."
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		log.Warn().Err(err).Msg("Error rendering markdown, falling back to plain text")
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}
