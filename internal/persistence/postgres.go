package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// PostgresDB implements the Database interface for PostgreSQL
type PostgresDB struct {
	db       *sql.DB
	articles ArticleRepository
}

// PoolOptions configures the connection pool. Zero values use the defaults.
type PoolOptions struct {
	MaxOpen int
	MaxIdle int
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string, pool PoolOptions) (*PostgresDB, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("database connection string is required")
	}

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen, maxIdle := pool.MaxOpen, pool.MaxIdle
	if maxOpen <= 0 {
		maxOpen = 25
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{
		db:       db,
		articles: &postgresArticleRepo{db: db},
	}, nil
}

func (p *PostgresDB) Articles() ArticleRepository { return p.articles }

func (p *PostgresDB) Close() error {
	return p.db.Close()
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
