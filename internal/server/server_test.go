package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aigency/internal/config"
	"aigency/internal/core"
	"aigency/internal/generator"
	"aigency/internal/grammar"
	"aigency/internal/persistence"
	"aigency/internal/research"
	"aigency/internal/signature"
)

type fakeService struct {
	researchErr   error
	articleErr    error
	researchCalls int

	lastURL       string
	lastTopics    signature.TopicsRequest
	lastHeadlines signature.HeadlinesRequest
	lastContent   signature.ContentRequest
	lastTags      signature.TagsRequest
	lastArticle   generator.ArticleRequest
}

func (f *fakeService) ResolveSource(ctx context.Context, url string) (core.SourceText, error) {
	f.lastURL = url
	if url == "" {
		return core.DefaultArticle, nil
	}
	if !strings.HasPrefix(url, "http") {
		return "", &core.FetchError{URL: url, Err: core.ErrInvalidURL}
	}
	return core.SourceText("text of " + url), nil
}

func (f *fakeService) GenerateTopics(ctx context.Context, req signature.TopicsRequest) (core.TopicSet, error) {
	f.lastTopics = req
	return core.TopicSet{Topics: []string{"Ceny palív", "Inflácia"}}, nil
}

func (f *fakeService) GenerateArticle(ctx context.Context, req generator.ArticleRequest) (*core.ArticleResult, error) {
	f.lastArticle = req
	if f.articleErr != nil {
		return nil, f.articleErr
	}
	return &core.ArticleResult{ID: "a1", URL: req.URL, Headline: "Titulok", Body: "A\nB\nC"}, nil
}

func (f *fakeService) GenerateHeadlines(ctx context.Context, req signature.HeadlinesRequest) (core.HeadlineSet, error) {
	f.lastHeadlines = req
	if _, err := signature.Headlines(req); err != nil {
		return core.HeadlineSet{}, err
	}
	return core.HeadlineSet{Headlines: []string{"Titulok"}}, nil
}

func (f *fakeService) GeneratePerex(ctx context.Context, req signature.ContentRequest) (core.Perex, error) {
	f.lastContent = req
	if _, err := signature.Perex(req); err != nil {
		return "", err
	}
	return "Perex.", nil
}

func (f *fakeService) GenerateEngagingText(ctx context.Context, req signature.ContentRequest) (core.EngagingText, error) {
	f.lastContent = req
	return "Háčik.", nil
}

func (f *fakeService) GenerateArticleBody(ctx context.Context, req signature.ContentRequest) (core.ArticleBody, error) {
	f.lastContent = req
	return "A\nB\nC", nil
}

func (f *fakeService) GenerateTags(ctx context.Context, req signature.TagsRequest) (core.TagSet, error) {
	f.lastTags = req
	return core.TagSet{Tags: []string{"#BENZÍN"}}, nil
}

func (f *fakeService) GenerateGraph(ctx context.Context, req signature.GraphRequest) (core.GraphSpec, error) {
	return core.GraphSpec{ShouldGenerate: false}, nil
}

func (f *fakeService) Research(ctx context.Context, topic, url string) (*research.Result, error) {
	f.researchCalls++
	if f.researchErr != nil {
		return nil, f.researchErr
	}
	return &research.Result{Topic: topic, Article: "Výskum."}, nil
}

type fakeChecker struct{}

func (fakeChecker) Check(ctx context.Context, text string, lang core.Language) ([]grammar.Issue, error) {
	return []grammar.Issue{{Message: "Chyba", Offset: 0, Length: 3, Replacements: []string{"Ahoj"}, RuleID: lang.ToolCode()}}, nil
}

type fakeRepo struct {
	saved []persistence.ArticleData
}

func (r *fakeRepo) Save(ctx context.Context, data persistence.ArticleData) (int64, error) {
	r.saved = append(r.saved, data)
	return int64(len(r.saved)), nil
}

func (r *fakeRepo) Get(ctx context.Context, id int64) (*persistence.ArticleData, error) {
	if id < 1 || int(id) > len(r.saved) {
		return nil, persistence.ErrNotFound
	}
	return &r.saved[id-1], nil
}

func (r *fakeRepo) List(ctx context.Context, limit int) ([]persistence.StoredArticle, error) {
	return nil, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) error {
	return persistence.ErrNotFound
}

func newTestServer(svc *fakeService, checker GrammarChecker, repo persistence.ArticleRepository) *Server {
	return New(svc, checker, repo, config.Server{Host: "localhost", Port: 0, CORSOrigins: []string{"https://app.example.com"}})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeService{}, nil, nil)
	rec := do(t, s, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	decode(t, rec, &resp)
	if resp.Status != "ok" || resp.Checks["grammar"] != "disabled" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestTopics(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc, nil, nil)

	rec := do(t, s, http.MethodGet, "/article/topics?url=https://example.com/a&count=2&language=english", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp core.TopicSet
	decode(t, rec, &resp)
	if len(resp.Topics) != 2 {
		t.Errorf("topics = %v", resp.Topics)
	}
	if svc.lastTopics.Count != 2 || svc.lastTopics.Language != core.LanguageEnglish {
		t.Errorf("request = %+v", svc.lastTopics)
	}
	if svc.lastTopics.Source != "text of https://example.com/a" {
		t.Errorf("source = %q", svc.lastTopics.Source)
	}
}

func TestTopicsErrors(t *testing.T) {
	s := newTestServer(&fakeService{}, nil, nil)

	tests := []struct {
		path  string
		stage string
	}{
		{"/article/topics?count=0", ""},
		{"/article/topics?language=german", ""},
		{"/article/topics?url=ftp-site", "fetch"},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodGet, tt.path, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.path, rec.Code)
			continue
		}
		var resp ErrorResponse
		decode(t, rec, &resp)
		if resp.Error == "" || resp.Stage != tt.stage {
			t.Errorf("%s: resp = %+v", tt.path, resp)
		}
	}
}

func TestGenerate(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc, nil, nil)

	rec := do(t, s, http.MethodPost, "/article/generate", `{"url": "https://example.com/a", "augment": true, "tags_count": 5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result core.ArticleResult
	decode(t, rec, &result)
	if result.ID != "a1" || result.Headline != "Titulok" {
		t.Errorf("result = %+v", result)
	}
	if !svc.lastArticle.Augment || svc.lastArticle.TagsCount != 5 {
		t.Errorf("request = %+v", svc.lastArticle)
	}
}

func TestGenerateStageFailure(t *testing.T) {
	svc := &fakeService{articleErr: &core.GenerationError{Stage: core.StageBody, Err: errors.New("too short")}}
	s := newTestServer(svc, nil, nil)

	rec := do(t, s, http.MethodPost, "/article/generate", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	decode(t, rec, &resp)
	if resp.Stage != "body" || !strings.Contains(resp.Error, "too short") {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHeadlinesRegenerate(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc, nil, nil)

	rec := do(t, s, http.MethodPost, "/article/headlines", `{"topic": "Ceny palív", "prior": ["Starý titulok"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	mode := svc.lastHeadlines.Mode
	if !mode.IsRegeneration() || mode.Prior()[0] != "Starý titulok" {
		t.Errorf("mode = %+v, want regeneration with prior", mode)
	}
	if svc.lastHeadlines.Source != core.DefaultArticle {
		t.Error("empty url should resolve to the default article")
	}
}

func TestPerexRequiresHeadline(t *testing.T) {
	s := newTestServer(&fakeService{}, nil, nil)

	rec := do(t, s, http.MethodPost, "/article/perex", `{"topic": "Ceny palív"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "headline is required") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestPerexRegenerateAugmentedIsRejected(t *testing.T) {
	s := newTestServer(&fakeService{}, nil, nil)

	body := `{"topic": "Ceny palív", "headline": "Titulok", "prior": ["Starý perex."], "research_article": "Výskum."}`
	rec := do(t, s, http.MethodPost, "/article/perex", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	decode(t, rec, &resp)
	if resp.Stage != "" || !strings.Contains(resp.Error, "not supported") {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAugmentDegradesWhenResearchFails(t *testing.T) {
	svc := &fakeService{researchErr: errors.New("storm down")}
	s := newTestServer(svc, nil, nil)

	rec := do(t, s, http.MethodPost, "/article/body", `{"topic": "Ceny palív", "headline": "Titulok", "augment": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastContent.Mode.IsAugmented() {
		t.Error("mode is augmented although research failed")
	}

	svc.researchErr = nil
	rec = do(t, s, http.MethodPost, "/article/engaging-text", `{"topic": "Ceny palív", "headline": "Titulok", "augment": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastContent.Mode.Augmentation() != "Výskum." {
		t.Errorf("augmentation = %q, want research article", svc.lastContent.Mode.Augmentation())
	}
}

func TestAugmentRejectedBeforeResearch(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc, nil, nil)

	for _, tc := range []struct{ path, body string }{
		{"/article/headlines", `{"topic": "Ceny palív", "augment": true}`},
		{"/article/tags", `{"topic": "T", "headline": "H", "article": "A\nB\nC", "augment": true}`},
		{"/article/perex", `{"topic": "T", "headline": "H", "prior": ["Starý perex."], "augment": true}`},
	} {
		rec := do(t, s, http.MethodPost, tc.path, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.path, rec.Code)
			continue
		}
		var resp ErrorResponse
		decode(t, rec, &resp)
		if !strings.Contains(resp.Error, "not supported") {
			t.Errorf("%s: error = %q", tc.path, resp.Error)
		}
	}
	if svc.researchCalls != 0 {
		t.Errorf("research called %d times for unsupported kinds", svc.researchCalls)
	}
}

func TestTagsRequireArticle(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc, nil, nil)

	rec := do(t, s, http.MethodPost, "/article/tags", `{"topic": "T", "headline": "H"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/article/tags", `{"topic": "T", "headline": "H", "article": "A\nB\nC"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastTags.Body != "A\nB\nC" {
		t.Errorf("tags body = %q", svc.lastTags.Body)
	}
}

func TestUnknownFieldsRejected(t *testing.T) {
	s := newTestServer(&fakeService{}, nil, nil)
	rec := do(t, s, http.MethodPost, "/article/graph", `{"graph": true}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSaveAndGet(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestServer(&fakeService{}, nil, repo)

	body := `{"url": "https://example.com/a", "topic": "Ceny", "headline": "Titulok", "headlines": ["Titulok", "Iný"],
		"perex": "P", "engaging_text": "E", "article": "A\nB\nC", "tags": ["#BENZÍN"]}`
	rec := do(t, s, http.MethodPost, "/article/save", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(repo.saved) != 1 || repo.saved[0].Heading.HeadingContent != "Titulok" || repo.saved[0].Body.BodyContent != "A\nB\nC" {
		t.Errorf("saved = %+v", repo.saved)
	}

	rec = do(t, s, http.MethodGet, "/articles/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got map[string]any
	decode(t, rec, &got)
	if got["heading"].(map[string]any)["heading_content"] != "Titulok" {
		t.Errorf("got = %v", got)
	}

	if rec := do(t, s, http.MethodGet, "/articles/7", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing article status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/articles/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", rec.Code)
	}
}

func TestSaveWithoutDatabase(t *testing.T) {
	s := newTestServer(&fakeService{}, nil, nil)
	rec := do(t, s, http.MethodPost, "/article/save", `{"headline": "Titulok"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestCheckGrammar(t *testing.T) {
	s := newTestServer(&fakeService{}, fakeChecker{}, nil)

	rec := do(t, s, http.MethodPost, "/check-grammar", `{"text": "ahj svet", "language": "english"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Issues []grammar.Issue `json:"issues"`
	}
	decode(t, rec, &resp)
	if len(resp.Issues) != 1 || resp.Issues[0].RuleID != "en-US" || resp.Issues[0].Replacements[0] != "Ahoj" {
		t.Errorf("issues = %+v", resp.Issues)
	}

	s = newTestServer(&fakeService{}, nil, nil)
	if rec := do(t, s, http.MethodPost, "/check-grammar", `{"text": "x"}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(&fakeService{}, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/article/generate", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
