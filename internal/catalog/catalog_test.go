package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascadedb/cascadeql/internal/config"
)

func TestLocalCatalogPutGet(t *testing.T) {
	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "catalog.db")

	cat, err := Open(cfg, path)
	require.NoError(t, err)
	defer cat.Close()

	ctx := context.Background()
	require.NoError(t, cat.Put(ctx, "users.schema", []byte(`{"columns":["id","name"]}`)))

	value, ok, err := cat.Get(ctx, "users.schema")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"columns":["id","name"]}`, string(value))
}

func TestLocalCatalogMissingKey(t *testing.T) {
	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "catalog.db")

	cat, err := Open(cfg, path)
	require.NoError(t, err)
	defer cat.Close()

	_, ok, err := cat.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemoteMetadataServerIsUnimplemented(t *testing.T) {
	cfg := config.Default()
	cfg.MetadataServer = "catalog.example:9000"

	cat, err := Open(cfg, "")
	require.NoError(t, err)
	defer cat.Close()

	_, _, err = cat.Get(context.Background(), "anything")
	require.Error(t, err)
}
