package simpletypes

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/sqlmao"
)

func newTestMAO(t *testing.T) mao.MAO {
	t.Helper()
	db, err := sqlmao.Open(filepath.Join(t.TempDir(), "metadata.sqlite"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.InitSchema(context.Background()))
	return db
}

func TestBootstrapCreatesCatalogAndIsIdempotent(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	require.NoError(t, Bootstrap(ctx, m))
	require.NoError(t, Bootstrap(ctx, m))

	got, err := m.FindTypeByNameAndVersion(ctx, mdtype.ArtifactKind, "DataSet", "")
	require.NoError(t, err)
	require.NotZero(t, got.ID)
}

func TestIsSimpleType(t *testing.T) {
	require.True(t, IsSimpleType(mdtype.ArtifactKind, "DataSet"))
	require.True(t, IsSimpleType(mdtype.ExecutionKind, "Component"))
	require.True(t, IsSimpleType(mdtype.ContextKind, "Context"))
	require.False(t, IsSimpleType(mdtype.ArtifactKind, "Component"))
	require.False(t, IsSimpleType(mdtype.ArtifactKind, "CustomArtifact"))
}
