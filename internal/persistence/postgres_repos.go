package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"aigency/internal/core"

	"github.com/lib/pq"
)

// postgresArticleRepo implements ArticleRepository for PostgreSQL
type postgresArticleRepo struct {
	db *sql.DB
}

// fieldTables maps single-value article fields to their table and column.
var fieldTables = []struct {
	table  string
	column string
	value  func(ArticleData) string
}{
	{"sources", "url", func(d ArticleData) string { return d.URL.URL }},
	{"headings", "heading_content", func(d ArticleData) string { return d.Heading.HeadingContent }},
	{"topics", "topic_content", func(d ArticleData) string { return d.Topic.TopicContent }},
	{"perex", "perex_content", func(d ArticleData) string { return d.Perex.PerexContent }},
	{"body", "body_content", func(d ArticleData) string { return d.Body.BodyContent }},
	{"texts", "text_content", func(d ArticleData) string { return d.EngagingText.EngagingTextContent }},
}

func (r *postgresArticleRepo) Save(ctx context.Context, data ArticleData) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	language := data.Language
	if language == "" {
		language = string(core.LanguageSlovak)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO generated_articles (article_uuid, language) VALUES ($1, $2) RETURNING id`,
		sql.NullString{String: data.UUID, Valid: data.UUID != ""}, language,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert article: %w", err)
	}

	for _, f := range fieldTables {
		query := fmt.Sprintf(`INSERT INTO %s (%s, generated_article_id) VALUES ($1, $2)`, f.table, f.column)
		if _, err := tx.ExecContext(ctx, query, f.value(data), id); err != nil {
			return 0, fmt.Errorf("failed to insert %s: %w", f.table, err)
		}
	}

	for i, tag := range data.Tags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tags (tags_content, position, generated_article_id) VALUES ($1, $2, $3)`,
			tag.TagsContent, i, id)
		if err != nil {
			return 0, fmt.Errorf("failed to insert tag: %w", err)
		}
	}

	if g := data.GraphData; g != nil {
		labels, err := json.Marshal(g.GraphLabels)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal graph labels: %w", err)
		}
		values, err := json.Marshal(g.GraphValues)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal graph values: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO graphs (graph_type, graph_labels, graph_values, generated_article_id) VALUES ($1, $2, $3, $4)`,
			string(g.GraphType), labels, values, id)
		if err != nil {
			return 0, fmt.Errorf("failed to insert graph: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit article: %w", err)
	}
	return id, nil
}

func (r *postgresArticleRepo) Get(ctx context.Context, id int64) (*ArticleData, error) {
	query := `
		SELECT COALESCE(a.article_uuid, ''), a.language,
			COALESCE(s.url, ''), COALESCE(h.heading_content, ''), COALESCE(t.topic_content, ''),
			COALESCE(p.perex_content, ''), COALESCE(b.body_content, ''), COALESCE(x.text_content, ''),
			COALESCE(ARRAY(SELECT tags_content FROM tags WHERE generated_article_id = a.id ORDER BY position), '{}')
		FROM generated_articles a
		LEFT JOIN sources s ON s.generated_article_id = a.id
		LEFT JOIN headings h ON h.generated_article_id = a.id
		LEFT JOIN topics t ON t.generated_article_id = a.id
		LEFT JOIN perex p ON p.generated_article_id = a.id
		LEFT JOIN body b ON b.generated_article_id = a.id
		LEFT JOIN texts x ON x.generated_article_id = a.id
		WHERE a.id = $1
	`

	var data ArticleData
	var tags []string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&data.UUID, &data.Language,
		&data.URL.URL, &data.Heading.HeadingContent, &data.Topic.TopicContent,
		&data.Perex.PerexContent, &data.Body.BodyContent, &data.EngagingText.EngagingTextContent,
		pq.Array(&tags),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	data.Tags = make([]TagField, 0, len(tags))
	for _, tag := range tags {
		data.Tags = append(data.Tags, TagField{TagsContent: tag})
	}

	graph, err := r.graph(ctx, id)
	if err != nil {
		return nil, err
	}
	data.GraphData = graph
	return &data, nil
}

func (r *postgresArticleRepo) graph(ctx context.Context, id int64) (*GraphRecord, error) {
	var graphType string
	var labels, values []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT graph_type, graph_labels, graph_values FROM graphs WHERE generated_article_id = $1`, id,
	).Scan(&graphType, &labels, &values)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get graph: %w", err)
	}

	record := &GraphRecord{GraphType: core.GraphType(graphType)}
	if err := json.Unmarshal(labels, &record.GraphLabels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph labels: %w", err)
	}
	if err := json.Unmarshal(values, &record.GraphValues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph values: %w", err)
	}
	return record, nil
}

func (r *postgresArticleRepo) List(ctx context.Context, limit int) ([]StoredArticle, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT a.id, COALESCE(s.url, ''), COALESCE(h.heading_content, ''), COALESCE(t.topic_content, ''), a.language
		FROM generated_articles a
		LEFT JOIN sources s ON s.generated_article_id = a.id
		LEFT JOIN headings h ON h.generated_article_id = a.id
		LEFT JOIN topics t ON t.generated_article_id = a.id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []StoredArticle
	for rows.Next() {
		var a StoredArticle
		if err := rows.Scan(&a.ID, &a.URL, &a.Heading, &a.Topic, &a.Language); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *postgresArticleRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM generated_articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
