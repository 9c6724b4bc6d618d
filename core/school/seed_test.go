package school

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	data    []byte
	err     error
	fetches int
}

func (f *stubFetcher) Fetch(context.Context) ([]byte, error) {
	f.fetches++
	return f.data, f.err
}

func Test_Loader_seedsOnFirstRun(t *testing.T) {
	storage := new(memStorage)
	fetcher := &stubFetcher{data: []byte(`{"alunos":[{"id":"a1","nome":"Ana","matricula":"001"}]}`)}
	loader := NewLoader(storage, fetcher, nopLogger{})

	doc, err := loader.EnsureLoaded(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Students, 1)
	assert.Equal(t, "Ana", doc.Students[0].Name)

	// missing collections defaulted to empty
	assert.NotNil(t, doc.Users)
	assert.NotNil(t, doc.Announcements)

	// persisted with every top-level key present
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(storage.data, &keys))
	for _, key := range []string{
		"usuarios", "alunos", "professores", "disciplinas", "turmas",
		"notas", "frequencia", "aulas", "tarefas", "avisos",
	} {
		assert.Contains(t, keys, key)
	}
}

func Test_Loader_isIdempotent(t *testing.T) {
	storage := new(memStorage)
	fetcher := &stubFetcher{data: []byte(`{}`)}
	loader := NewLoader(storage, fetcher, nopLogger{})
	ctx := context.Background()

	doc1, err := loader.EnsureLoaded(ctx)
	require.NoError(t, err)
	first := append([]byte{}, storage.data...)

	// same in-memory document, no second fetch
	doc2, err := loader.EnsureLoaded(ctx)
	require.NoError(t, err)
	assert.Same(t, doc1, doc2)
	assert.Equal(t, 1, fetcher.fetches)

	// a fresh loader reads storage instead of re-seeding
	loader2 := NewLoader(storage, fetcher, nopLogger{})
	_, err = loader2.EnsureLoaded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.fetches)
	assert.Equal(t, first, storage.data)
}

func Test_Loader_seedUnavailable(t *testing.T) {
	ctx := context.Background()

	// fetch failure
	loader := NewLoader(new(memStorage), &stubFetcher{err: errors.New("boom")}, nopLogger{})
	_, err := loader.EnsureLoaded(ctx)
	assert.Equal(t, ErrSeedUnavailable, errors.Cause(err))

	// unparsable content
	loader = NewLoader(new(memStorage), &stubFetcher{data: []byte("not json")}, nopLogger{})
	_, err = loader.EnsureLoaded(ctx)
	assert.Equal(t, ErrSeedUnavailable, errors.Cause(err))
}

func Test_Loader_storedDocumentWins(t *testing.T) {
	storage := new(memStorage)
	stored := seedDoc()
	data, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, storage.Put(context.Background(), data))

	fetcher := &stubFetcher{data: []byte(`{"alunos":[]}`)}
	loader := NewLoader(storage, fetcher, nopLogger{})

	doc, err := loader.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stored.Students, doc.Students)
	assert.Zero(t, fetcher.fetches)
}
