package article

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// PostgresRepo archives enriched articles. The archive is append-only by
// id: re-running the pipeline over overlapping inputs leaves earlier rows
// untouched, so cross-run visibility never changes per-run dedupe
// semantics.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, item *Enriched) error {
	query := `INSERT INTO articles (id, source, url, title, description, content, published_at, summary, topics, sentiment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Source, item.URL, item.Title, item.Description, item.Content,
		item.PublishedAt, item.Summary, pq.Array(item.Topics), item.Sentiment)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Enriched, error) {
	item := &Enriched{}
	query := `SELECT id, source, url, title, description, content, published_at, summary, topics, sentiment
		FROM articles WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Source, &item.URL, &item.Title, &item.Description, &item.Content,
		&item.PublishedAt, &item.Summary, pq.Array(&item.Topics), &item.Sentiment)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]Enriched, error) {
	query := `SELECT id, source, url, title, description, content, published_at, summary, topics, sentiment
		FROM articles ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Enriched
	for rows.Next() {
		var item Enriched
		if err := rows.Scan(
			&item.ID, &item.Source, &item.URL, &item.Title, &item.Description, &item.Content,
			&item.PublishedAt, &item.Summary, pq.Array(&item.Topics), &item.Sentiment); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	return count, err
}

func (r *PostgresRepo) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM articles GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	return counts, rows.Err()
}
