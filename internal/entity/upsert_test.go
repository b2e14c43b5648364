package entity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
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

// UpsertArtifact is id-presence-only: a second no-id upsert whose name
// collides with an already-created row is a create attempt, and fails
// rather than silently falling back to an update of the existing row.
func TestUpsertArtifactWithoutIDFailsOnNameCollision(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()
	typeID, err := m.CreateType(ctx, mdtype.ArtifactKind, mdtype.Type{Name: "DataSet"})
	require.NoError(t, err)

	_, err = UpsertArtifact(ctx, m, mdentity.Artifact{TypeID: typeID, Name: "a", HasName: true})
	require.NoError(t, err)

	_, err = UpsertArtifact(ctx, m, mdentity.Artifact{
		TypeID: typeID, Name: "a", HasName: true, State: mdentity.ArtifactLive,
	})
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.AlreadyExists))
}

func TestUpsertArtifactByIDUpdatesInPlace(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()
	typeID, err := m.CreateType(ctx, mdtype.ArtifactKind, mdtype.Type{Name: "DataSet"})
	require.NoError(t, err)

	id, err := UpsertArtifact(ctx, m, mdentity.Artifact{TypeID: typeID, Name: "a", HasName: true})
	require.NoError(t, err)

	_, err = UpsertArtifact(ctx, m, mdentity.Artifact{ID: id, TypeID: typeID, State: mdentity.ArtifactDeleted})
	require.NoError(t, err)

	found, err := m.FindArtifactsByID(ctx, []int64{id})
	require.NoError(t, err)
	require.Equal(t, mdentity.ArtifactDeleted, found[0].State)
}

func TestInsertAttributionIfNotExistTolerated(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()
	artTypeID, err := m.CreateType(ctx, mdtype.ArtifactKind, mdtype.Type{Name: "DataSet"})
	require.NoError(t, err)
	ctxTypeID, err := m.CreateType(ctx, mdtype.ContextKind, mdtype.Type{Name: "Run"})
	require.NoError(t, err)

	artID, err := m.CreateArtifact(ctx, mdentity.Artifact{TypeID: artTypeID})
	require.NoError(t, err)
	ctxID, err := m.CreateContext(ctx, mdentity.Context{TypeID: ctxTypeID, Name: "run-1"})
	require.NoError(t, err)

	require.NoError(t, InsertAttributionIfNotExist(ctx, m, ctxID, artID))
	require.NoError(t, InsertAttributionIfNotExist(ctx, m, ctxID, artID))

	contexts, err := m.FindContextsByArtifact(ctx, artID)
	require.NoError(t, err)
	require.Len(t, contexts, 1)
}
