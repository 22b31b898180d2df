package files

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerpulse/internal/errors"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.List(ctx)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))

	_, err = store.Save(ctx, "b.xlsx", strings.NewReader("bee"))
	require.NoError(t, err)
	_, err = store.Save(ctx, "dir/a.xlsx", strings.NewReader("ay"))
	require.NoError(t, err)
	store.Put("~$b.xlsx", []byte("lock"), time.Now())

	files, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xlsx", "b.xlsx"}, Names(files))
	assert.Equal(t, int64(2), files[0].Size)

	rc, err := store.Open(ctx, "b.xlsx")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "bee", string(data))

	_, err = store.Open(ctx, "c.xlsx")
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestMemoryStore_ImplementsStore(t *testing.T) {
	var _ Store = NewMemoryStore()
	var _ Store = (*DirStore)(nil)
}
