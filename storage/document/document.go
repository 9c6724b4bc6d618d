// Package document provides storage backends for the serialized school
// document. Each backend persists the whole aggregate as one opaque JSON
// blob under the configured namespaced key.
package document

import (
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	filedoc "github.com/trezcool/shule/storage/document/file"
	inmemdoc "github.com/trezcool/shule/storage/document/inmem"
	pgdoc "github.com/trezcool/shule/storage/document/postgres"
	redisdoc "github.com/trezcool/shule/storage/document/redis"
)

// Open returns the configured storage backend.
func Open(conf *core.Config) (school.Storage, error) {
	switch conf.Storage.Backend {
	case "file":
		return filedoc.Open(conf.Storage.Dir, conf.Storage.Key)
	case "inmem":
		return inmemdoc.Open(), nil
	case "redis":
		return redisdoc.Open(conf)
	case "postgres":
		return pgdoc.Open(conf)
	default:
		return nil, errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}
