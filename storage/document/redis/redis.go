// Package redisdoc persists the document in Redis under the configured
// key; useful when several gateway instances share one document.
package redisdoc

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

type store struct {
	client *redis.Client
	key    string
}

var _ school.Storage = (*store)(nil)

func Open(conf *core.Config) (school.Storage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &store{client: client, key: conf.Storage.Key}, nil
}

func (s *store) Get(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, school.ErrDocumentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading document from redis")
	}
	return data, nil
}

func (s *store) Put(ctx context.Context, data []byte) error {
	return errors.Wrap(s.client.Set(ctx, s.key, data, 0).Err(), "writing document to redis")
}
