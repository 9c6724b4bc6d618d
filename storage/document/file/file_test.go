package filedoc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/school"
)

func Test_store_roundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, "db_prototipo_escola_v1")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Get(ctx)
	assert.Equal(t, school.ErrDocumentNotFound, err)

	doc := []byte(`{"alunos":[]}`)
	require.NoError(t, store.Put(ctx, doc))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	// overwrites fully
	doc2 := []byte(`{"alunos":[{"id":"a1"}]}`)
	require.NoError(t, store.Put(ctx, doc2))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc2, got)

	// no temp file left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "db_prototipo_escola_v1.json", entries[0].Name())
}

func Test_Open_createsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := Open(dir, "db")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
