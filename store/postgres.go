package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"rag/types"
)

// PostgresStore keeps the collection in a pgvector-enabled Postgres table
// and delegates nearest-neighbour ordering to the <=> cosine operator.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	p := &PostgresStore{pool: pool}
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("enabling pgvector extension: %w", err)
	}
	return p, nil
}

// ensureTable creates the collection table for the given dimension. pgvector
// columns carry a fixed dimension, so the table appears on the first Add.
func (p *PostgresStore) ensureTable(ctx context.Context, dim int) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id          TEXT PRIMARY KEY,
		content     TEXT NOT NULL,
		source      TEXT NOT NULL,
		chunk_index INT NOT NULL,
		embedding   vector(%d) NOT NULL
	)`, types.Collection, dim)
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Add(ctx context.Context, records []types.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}
	dim, err := p.dimension(ctx)
	if err != nil {
		return err
	}
	if err := validateRecords(records, dim); err != nil {
		return err
	}
	if err := p.ensureTable(ctx, len(records[0].Embedding)); err != nil {
		return fmt.Errorf("creating collection table: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin add transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(
		`INSERT INTO %s (id, content, source, chunk_index, embedding) VALUES ($1, $2, $3, $4, $5)`,
		types.Collection)
	for i := range records {
		r := &records[i]
		if _, err := tx.Exec(ctx, query, r.ID, r.Text, r.Source, r.ChunkIndex, pgvector.NewVector(r.Embedding)); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return &DuplicateIDError{ID: r.ID}
			}
			return fmt.Errorf("insert record %q: %w", r.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, types.Collection)); err != nil {
		return fmt.Errorf("dropping collection table: %w", err)
	}
	// Recreated lazily on the next Add, once the dimension is known.
	return nil
}

func (p *PostgresStore) Query(ctx context.Context, vector []float32, k int) ([]types.Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	exists, err := p.tableExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, content, source, chunk_index, embedding <=> $1 AS distance
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`, types.Collection)
	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []types.Match
	for rows.Next() {
		var m types.Match
		if err := rows.Scan(&m.ID, &m.Text, &m.Source, &m.ChunkIndex, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *PostgresStore) tableExists(ctx context.Context) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
		types.Collection).Scan(&exists)
	return exists, err
}

// dimension reports the collection's current vector dimension, 0 when the
// collection is absent or empty.
func (p *PostgresStore) dimension(ctx context.Context) (int, error) {
	exists, err := p.tableExists(ctx)
	if err != nil || !exists {
		return 0, err
	}
	var vec pgvector.Vector
	query := fmt.Sprintf(`SELECT embedding FROM %s LIMIT 1`, types.Collection)
	if err := p.pool.QueryRow(ctx, query).Scan(&vec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("probe collection dimension: %w", err)
	}
	return len(vec.Slice()), nil
}
