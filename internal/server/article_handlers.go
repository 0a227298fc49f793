package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"aigency/internal/core"
	"aigency/internal/generator"
	"aigency/internal/grammar"
	"aigency/internal/persistence"
	"aigency/internal/signature"

	"github.com/go-chi/chi/v5"
)

// StageRequest is the body of the single-field generation routes. Prior lists the
// outputs to move away from; Augment or ResearchArticle thread research text in.
type StageRequest struct {
	URL             string   `json:"url"`
	Topic           string   `json:"topic"`
	Headline        string   `json:"headline"`
	Article         string   `json:"article"`
	Language        string   `json:"language"`
	Count           int      `json:"count"`
	Prior           []string `json:"prior"`
	Augment         bool     `json:"augment"`
	ResearchArticle string   `json:"research_article"`
}

// GenerateRequest is the body of POST /article/generate
type GenerateRequest struct {
	URL            string `json:"url"`
	Topic          string `json:"topic"`
	Augment        bool   `json:"augment"`
	HeadlinesCount int    `json:"headlines_count"`
	TagsCount      int    `json:"tags_count"`
	Language       string `json:"language"`
}

// GrammarRequest is the body of POST /check-grammar
type GrammarRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// stageInput is a StageRequest resolved against the source and research services.
type stageInput struct {
	source core.SourceText
	lang   core.Language
	mode   signature.Mode
}

// parseLanguage keeps an empty language empty so the generator default applies.
func parseLanguage(s string) (core.Language, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return core.ParseLanguage(s)
}

func (s *Server) prepare(ctx context.Context, kind signature.Kind, req StageRequest, needTopic, needHeadline bool) (stageInput, error) {
	if needTopic && strings.TrimSpace(req.Topic) == "" {
		return stageInput{}, errors.New("topic is required")
	}
	if needHeadline && strings.TrimSpace(req.Headline) == "" {
		return stageInput{}, errors.New("headline is required")
	}
	lang, err := parseLanguage(req.Language)
	if err != nil {
		return stageInput{}, err
	}

	source, err := s.articles.ResolveSource(ctx, req.URL)
	if err != nil {
		return stageInput{}, err
	}

	augmentation := req.ResearchArticle
	if augmentation == "" && req.Augment {
		// Research is slow; reject kinds that cannot use it before asking.
		if _, err := signature.SelectVariant(kind, signature.ModeFor(req.Prior, "research")); err != nil {
			return stageInput{}, err
		}
		result, err := s.articles.Research(ctx, req.Topic, req.URL)
		if err != nil {
			s.log.WarnContext(ctx, "Research failed, continuing without augmentation", "error", err.Error())
		} else {
			augmentation = result.Article
		}
	}

	return stageInput{
		source: source,
		lang:   lang,
		mode:   signature.ModeFor(req.Prior, augmentation),
	}, nil
}

// handleTopics handles GET /article/topics?url=&count=&language=
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lang, err := parseLanguage(q.Get("language"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	count := 0
	if c := q.Get("count"); c != "" {
		if count, err = strconv.Atoi(c); err != nil || count < 1 {
			s.respondError(w, r, errors.New("count must be a positive integer"))
			return
		}
	}

	source, err := s.articles.ResolveSource(r.Context(), q.Get("url"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	topics, err := s.articles.GenerateTopics(r.Context(), signature.TopicsRequest{
		Source:   source,
		Count:    count,
		Language: lang,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, topics)
}

// handleGenerate handles POST /article/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	lang, err := parseLanguage(req.Language)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.articles.GenerateArticle(r.Context(), generator.ArticleRequest{
		URL:            req.URL,
		Topic:          req.Topic,
		Augment:        req.Augment,
		HeadlinesCount: req.HeadlinesCount,
		TagsCount:      req.TagsCount,
		Language:       lang,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleHeadlines handles POST /article/headlines
func (s *Server) handleHeadlines(w http.ResponseWriter, r *http.Request) {
	var req StageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	in, err := s.prepare(r.Context(), signature.KindHeadlines, req, true, false)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	headlines, err := s.articles.GenerateHeadlines(r.Context(), signature.HeadlinesRequest{
		Source:   in.source,
		Topic:    req.Topic,
		Count:    req.Count,
		Language: in.lang,
		Mode:     in.mode,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, headlines)
}

func (s *Server) contentRequest(r *http.Request, kind signature.Kind) (signature.ContentRequest, error) {
	var req StageRequest
	if err := decodeJSON(r, &req); err != nil {
		return signature.ContentRequest{}, err
	}
	in, err := s.prepare(r.Context(), kind, req, true, true)
	if err != nil {
		return signature.ContentRequest{}, err
	}
	return signature.ContentRequest{
		Source:   in.source,
		Topic:    req.Topic,
		Headline: req.Headline,
		Language: in.lang,
		Mode:     in.mode,
	}, nil
}

// handlePerex handles POST /article/perex
func (s *Server) handlePerex(w http.ResponseWriter, r *http.Request) {
	req, err := s.contentRequest(r, signature.KindPerex)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	perex, err := s.articles.GeneratePerex(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"perex": string(perex)})
}

// handleEngagingText handles POST /article/engaging-text
func (s *Server) handleEngagingText(w http.ResponseWriter, r *http.Request) {
	req, err := s.contentRequest(r, signature.KindEngagingText)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	text, err := s.articles.GenerateEngagingText(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"engaging_text": string(text)})
}

// handleBody handles POST /article/body
func (s *Server) handleBody(w http.ResponseWriter, r *http.Request) {
	req, err := s.contentRequest(r, signature.KindBody)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	body, err := s.articles.GenerateArticleBody(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"article": string(body)})
}

// handleTags handles POST /article/tags
func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	var req StageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Article) == "" {
		s.respondError(w, r, errors.New("article is required"))
		return
	}
	in, err := s.prepare(r.Context(), signature.KindTags, req, true, true)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	tags, err := s.articles.GenerateTags(r.Context(), signature.TagsRequest{
		Source:   in.source,
		Topic:    req.Topic,
		Headline: req.Headline,
		Body:     req.Article,
		Count:    req.Count,
		Language: in.lang,
		Mode:     in.mode,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tags)
}

// handleGraph handles POST /article/graph
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req StageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	in, err := s.prepare(r.Context(), signature.KindGraph, req, false, false)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	spec, err := s.articles.GenerateGraph(r.Context(), signature.GraphRequest{
		Source:   in.source,
		Language: in.lang,
		Mode:     in.mode,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, spec)
}

// handleSave handles POST /article/save with a generated article as body
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.respondUnavailable(w, "database")
		return
	}
	var result core.ArticleResult
	if err := decodeJSON(r, &result); err != nil {
		s.respondError(w, r, err)
		return
	}
	if result.Headline == "" && len(result.Headlines) == 0 {
		s.respondError(w, r, errors.New("article has no headline"))
		return
	}

	data := persistence.BuildArticleData(&result)
	id, err := s.repo.Save(r.Context(), data)
	if err != nil {
		s.log.Error("Failed to save article", "error", err.Error())
		s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to save article"})
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// handleListArticles handles GET /articles?limit=
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.respondUnavailable(w, "database")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	articles, err := s.repo.List(r.Context(), limit)
	if err != nil {
		s.log.Error("Failed to list articles", "error", err.Error())
		s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list articles"})
		return
	}
	if articles == nil {
		articles = []persistence.StoredArticle{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

// handleGetArticle handles GET /articles/{id}
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.respondUnavailable(w, "database")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, r, errors.New("invalid article id"))
		return
	}

	data, err := s.repo.Get(r.Context(), id)
	if errors.Is(err, persistence.ErrNotFound) {
		s.respondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.log.Error("Failed to get article", "id", id, "error", err.Error())
		s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to get article"})
		return
	}
	s.respondJSON(w, http.StatusOK, data)
}

// handleDeleteArticle handles DELETE /articles/{id}
func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.respondUnavailable(w, "database")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, r, errors.New("invalid article id"))
		return
	}

	err = s.repo.Delete(r.Context(), id)
	if errors.Is(err, persistence.ErrNotFound) {
		s.respondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.log.Error("Failed to delete article", "id", id, "error", err.Error())
		s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to delete article"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCheckGrammar handles POST /check-grammar
func (s *Server) handleCheckGrammar(w http.ResponseWriter, r *http.Request) {
	if s.grammar == nil {
		s.respondUnavailable(w, "grammar checker")
		return
	}
	var req GrammarRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	lang, err := core.ParseLanguage(req.Language)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	issues, err := s.grammar.Check(r.Context(), req.Text, lang)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if issues == nil {
		issues = []grammar.Issue{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"issues": issues})
}
