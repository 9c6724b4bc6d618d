// Package pgdoc persists the document as a single row in Postgres.
package pgdoc

import (
	"context"
	"database/sql"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key        text PRIMARY KEY,
	data       jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);`

type store struct {
	db  *sqlx.DB
	key string
}

var _ school.Storage = (*store)(nil)

func Open(conf *core.Config) (school.Storage, error) {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.DatabaseAddress(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	db, err := sqlx.Connect("postgres", u.String())
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "ensuring documents table")
	}
	return &store{db: db, key: conf.Storage.Key}, nil
}

func (s *store) Get(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, `SELECT data FROM documents WHERE key = $1`, s.key)
	if err == sql.ErrNoRows {
		return nil, school.ErrDocumentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading document row")
	}
	return data, nil
}

func (s *store) Put(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		s.key, data,
	)
	return errors.Wrap(err, "upserting document row")
}
