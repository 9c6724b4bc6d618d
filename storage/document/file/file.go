// Package filedoc persists the document as a JSON file on disk; the
// default backend for single-instance deployments.
package filedoc

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type store struct {
	path string
}

var _ school.Storage = (*store)(nil)

func Open(dir, key string) (school.Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating storage dir")
	}
	return &store{path: filepath.Join(dir, key+".json")}, nil
}

func (s *store) Get(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, school.ErrDocumentNotFound
	}
	return data, err
}

func (s *store) Put(_ context.Context, data []byte) error {
	// write-then-rename so a crash never leaves a torn document behind
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
