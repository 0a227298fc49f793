package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"aigency/internal/core"
	"aigency/internal/generator"
	"aigency/internal/grammar"
	"aigency/internal/research"
	"aigency/internal/signature"
)

// ArticleService is the generation surface used by the handlers. *generator.Generator
// satisfies it.
type ArticleService interface {
	ResolveSource(ctx context.Context, url string) (core.SourceText, error)
	GenerateTopics(ctx context.Context, req signature.TopicsRequest) (core.TopicSet, error)
	GenerateArticle(ctx context.Context, req generator.ArticleRequest) (*core.ArticleResult, error)
	GenerateHeadlines(ctx context.Context, req signature.HeadlinesRequest) (core.HeadlineSet, error)
	GeneratePerex(ctx context.Context, req signature.ContentRequest) (core.Perex, error)
	GenerateEngagingText(ctx context.Context, req signature.ContentRequest) (core.EngagingText, error)
	GenerateArticleBody(ctx context.Context, req signature.ContentRequest) (core.ArticleBody, error)
	GenerateTags(ctx context.Context, req signature.TagsRequest) (core.TagSet, error)
	GenerateGraph(ctx context.Context, req signature.GraphRequest) (core.GraphSpec, error)
	Research(ctx context.Context, topic, url string) (*research.Result, error)
}

// GrammarChecker returns raw grammar issues. *grammar.Corrector satisfies it.
type GrammarChecker interface {
	Check(ctx context.Context, text string, lang core.Language) ([]grammar.Issue, error)
}

// HealthResponse reports server health
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

var serverStartTime = time.Now()

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"grammar":  enabled(s.grammar != nil),
		"database": enabled(s.repo != nil),
	}
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(serverStartTime).Round(time.Second).String(),
		Checks: checks,
	})
}

func enabled(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err.Error())
	}
}

// respondError maps an error to a 400 response carrying its message and, for stage
// failures, the failing stage.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Error: err.Error()}
	if stage, ok := core.StageOf(err); ok {
		resp.Stage = string(stage)
	}

	var unsupported *core.UnsupportedCombinationError
	if errors.As(err, &unsupported) {
		s.log.Info("Unsupported mode requested", "path", r.URL.Path, "error", err.Error())
	} else {
		s.log.Warn("Request failed", "path", r.URL.Path, "stage", resp.Stage, "error", err.Error())
	}
	s.respondJSON(w, http.StatusBadRequest, resp)
}

func (s *Server) respondUnavailable(w http.ResponseWriter, what string) {
	s.respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: what + " is not configured"})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}
