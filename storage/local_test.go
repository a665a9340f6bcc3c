package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	caseID := uuid.New()
	ctx := context.Background()

	path, err := store.Upload(ctx, caseID, "defesa.txt", strings.NewReader("DEFESA DE CONTRAORDENAÇÃO"))
	require.NoError(t, err)
	assert.Contains(t, path, caseID.String())

	reader, err := store.Download(ctx, path)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "DEFESA DE CONTRAORDENAÇÃO", string(content))

	require.NoError(t, store.Delete(ctx, path))

	_, err = store.Download(ctx, path)
	assert.Error(t, err)
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "missing/file.txt"))
}
