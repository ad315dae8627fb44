package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	documentName = "items"
)

// Dialect carries the driver specific bits of SQLStore's queries.
type Dialect struct {
	Driver string
	load   string
	save   string
}

var (
	Postgres = Dialect{
		Driver: "pgx",
		load:   `SELECT body FROM catalog_documents WHERE name = $1`,
		save: `
			INSERT INTO catalog_documents (name, body) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET body = excluded.body
		`,
	}
	SQLite = Dialect{
		Driver: "sqlite",
		load:   `SELECT body FROM catalog_documents WHERE name = ?`,
		save: `
			INSERT INTO catalog_documents (name, body) VALUES (?, ?)
			ON CONFLICT (name) DO UPDATE SET body = excluded.body
		`,
	}
)

const schema = `
	CREATE TABLE IF NOT EXISTS catalog_documents (
		name TEXT PRIMARY KEY,
		body TEXT NOT NULL
	)
`

// SQLStore keeps the whole collection as one JSON document in a table row.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: d}
}

// OpenSQLStore opens dsn with the dialect's driver and prepares the schema.
func OpenSQLStore(ctx context.Context, d Dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Driver, err)
	}
	s := NewSQLStore(db, d)
	if err := s.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Init creates the table and seeds an empty collection if none exists.
func (s *SQLStore) Init(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			return storageErr("init", err)
		}

		var body string
		err := s.db.QueryRowContext(ctx, s.dialect.load, documentName).Scan(&body)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return storageErr("init", err)
		}
		if _, err := s.db.ExecContext(ctx, s.dialect.save, documentName, "[]"); err != nil {
			return storageErr("init", err)
		}
		return nil
	})
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		if err := s.db.PingContext(ctx); err != nil {
			return storageErr("ping", err)
		}
		return nil
	})
}

func (s *SQLStore) Load(ctx context.Context) ([]Item, error) {
	var body string

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, s.dialect.load, documentName).Scan(&body)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storageErr("read", errors.New("collection document missing"))
	}
	if err != nil {
		return nil, storageErr("read", err)
	}

	items := []Item{}
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, storageErr("decode", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *SQLStore) Save(ctx context.Context, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return storageErr("encode", err)
	}

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, s.dialect.save, documentName, string(body)); err != nil {
			return storageErr("write", err)
		}
		return nil
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
