package inmemdoc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/school"
)

func Test_Store(t *testing.T) {
	store := Open()
	ctx := context.Background()

	_, err := store.Get(ctx)
	assert.Equal(t, school.ErrDocumentNotFound, err)
	assert.Zero(t, store.PutCount())

	doc := []byte(`{"avisos":[]}`)
	require.NoError(t, store.Put(ctx, doc))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
	assert.Equal(t, 1, store.PutCount())

	// the stored copy is isolated from the caller's buffer
	doc[2] = 'x'
	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"avisos":[]}`), got)
}
