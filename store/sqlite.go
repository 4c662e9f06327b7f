package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"rag/types"
)

// SqliteStore keeps the collection in a single database file under the
// configured index directory. Queries are a brute-force cosine scan, which
// is plenty for a single-collection knowledge base.
type SqliteStore struct {
	db   *sql.DB
	path string
}

// NewSqliteStore opens (creating if needed) <dataDir>/<collection>.db in WAL
// mode so concurrent answer queries can read during an ingestion rebuild.
func NewSqliteStore(dataDir string) (*SqliteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, types.Collection+".db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	s := &SqliteStore{db: db, path: dbPath}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqliteStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			id          TEXT PRIMARY KEY,
			content     TEXT NOT NULL,
			source      TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			embedding   BLOB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating records table: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *SqliteStore) Path() string {
	return s.path
}

func (s *SqliteStore) Add(ctx context.Context, records []types.IndexRecord) error {
	dim, err := s.dimension(ctx)
	if err != nil {
		return err
	}
	if err := validateRecords(records, dim); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (id, content, source, chunk_index, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if _, err := stmt.ExecContext(ctx, r.ID, r.Text, r.Source, r.ChunkIndex, encodeVector(r.Embedding)); err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return &DuplicateIDError{ID: r.ID}
			}
			return fmt.Errorf("insert record %q: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SqliteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS records`); err != nil {
		return fmt.Errorf("dropping records table: %w", err)
	}
	return s.ensureSchema(ctx)
}

func (s *SqliteStore) Query(ctx context.Context, vector []float32, k int) ([]types.Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	dim, err := s.dimension(ctx)
	if err != nil {
		return nil, err
	}
	if dim > 0 && len(vector) != dim {
		return nil, fmt.Errorf("query vector has dimension %d, collection expects %d", len(vector), dim)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, content, source, chunk_index, embedding FROM records`)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	defer rows.Close()

	var matches []types.Match
	for rows.Next() {
		var m types.Match
		var blob []byte
		if err := rows.Scan(&m.ID, &m.Text, &m.Source, &m.ChunkIndex, &blob); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		m.Distance = cosineDistance(vector, decodeVector(blob))
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// dimension reports the collection's current vector dimension, 0 when empty.
func (s *SqliteStore) dimension(ctx context.Context) (int, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT embedding FROM records LIMIT 1`).Scan(&blob)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("probe collection dimension: %w", err)
	}
	return len(blob) / 4, nil
}

// encodeVector packs a vector as little-endian float32 bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

// cosineDistance is 1 - cosine similarity, the same metric the postgres
// backend gets from pgvector's <=> operator.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
