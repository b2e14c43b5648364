package lineage

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

// buildChain wires artifact1 -> execution -> artifact2 with events, so a
// traversal seeded at artifact1 can reach artifact2 in one hop.
func buildChain(t *testing.T, m mao.MAO) (art1, art2, exec int64) {
	ctx := context.Background()
	artTypeID, err := m.CreateType(ctx, mdtype.ArtifactKind, mdtype.Type{Name: "DataSet"})
	require.NoError(t, err)
	execTypeID, err := m.CreateType(ctx, mdtype.ExecutionKind, mdtype.Type{Name: "Trainer"})
	require.NoError(t, err)

	art1, err = m.CreateArtifact(ctx, mdentity.Artifact{TypeID: artTypeID, Name: "input", HasName: true})
	require.NoError(t, err)
	art2, err = m.CreateArtifact(ctx, mdentity.Artifact{TypeID: artTypeID, Name: "output", HasName: true})
	require.NoError(t, err)
	exec, err = m.CreateExecution(ctx, mdentity.Execution{TypeID: execTypeID})
	require.NoError(t, err)

	_, err = m.CreateEvent(ctx, mdentity.Event{
		ExecutionID: exec, HasExecutionID: true, ArtifactID: art1, HasArtifactID: true, Type: mdentity.EventInput,
	})
	require.NoError(t, err)
	_, err = m.CreateEvent(ctx, mdentity.Event{
		ExecutionID: exec, HasExecutionID: true, ArtifactID: art2, HasArtifactID: true, Type: mdentity.EventOutput,
	})
	require.NoError(t, err)
	return art1, art2, exec
}

func TestGetSeededByExplicitArtifactIDs(t *testing.T) {
	m := newTestMAO(t)
	art1, art2, exec := buildChain(t, m)

	sg, err := Get(context.Background(), m, Options{SeedArtifactIDs: []int64{art1}})
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{art1, art2}, sg.ArtifactIDs)
	require.ElementsMatch(t, []int64{exec}, sg.ExecutionIDs)
}

func TestGetSeededByTypeFilter(t *testing.T) {
	m := newTestMAO(t)
	art1, art2, _ := buildChain(t, m)

	arts, err := m.FindArtifactsByID(context.Background(), []int64{art1})
	require.NoError(t, err)
	typeID := arts[0].TypeID

	sg, err := Get(context.Background(), m, Options{SeedTypeID: typeID, HasSeedTypeID: true})
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{art1, art2}, sg.ArtifactIDs)
}

func TestGetEmptySeedSetIsNotFound(t *testing.T) {
	m := newTestMAO(t)
	_, err := Get(context.Background(), m, Options{SeedTypeID: 999, HasSeedTypeID: true})
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.NotFound))
}

func TestGetClampsExcessiveHopBudget(t *testing.T) {
	m := newTestMAO(t)
	art1, _, _ := buildChain(t, m)

	sg, err := Get(context.Background(), m, Options{SeedArtifactIDs: []int64{art1}, MaxNumHops: 10000})
	require.NoError(t, err)
	require.NotEmpty(t, sg.ArtifactIDs)
}

func TestGetZeroHopBudgetDefaultsToMax(t *testing.T) {
	m := newTestMAO(t)
	art1, art2, exec := buildChain(t, m)

	sg, err := Get(context.Background(), m, Options{SeedArtifactIDs: []int64{art1}, MaxNumHops: 0})
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{art1, art2}, sg.ArtifactIDs)
	require.ElementsMatch(t, []int64{exec}, sg.ExecutionIDs)
}

func TestGetRejectsNegativeHopBudget(t *testing.T) {
	m := newTestMAO(t)
	art1, _, _ := buildChain(t, m)

	_, err := Get(context.Background(), m, Options{SeedArtifactIDs: []int64{art1}, MaxNumHops: -1})
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.InvalidArgument))
}

func TestGetRejectsUnsetSeedConditions(t *testing.T) {
	m := newTestMAO(t)
	_, err := Get(context.Background(), m, Options{})
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.InvalidArgument))
}
