package graph

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

func TestPutExecutionWritesFullGraph(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	execTypeID, err := m.CreateType(ctx, mdtype.ExecutionKind, mdtype.Type{Name: "Trainer"})
	require.NoError(t, err)
	artTypeID, err := m.CreateType(ctx, mdtype.ArtifactKind, mdtype.Type{Name: "Model"})
	require.NoError(t, err)
	ctxTypeID, err := m.CreateType(ctx, mdtype.ContextKind, mdtype.Type{Name: "Run"})
	require.NoError(t, err)

	res, err := PutExecution(ctx, m, Request{
		Execution:    mdentity.Execution{TypeID: execTypeID, State: mdentity.ExecutionRunning},
		HasExecution: true,
		ArtifactsAndEvents: []ArtifactAndEvent{
			{
				Artifact: mdentity.Artifact{TypeID: artTypeID, Name: "model-1", HasName: true, State: mdentity.ArtifactLive},
				Event:    mdentity.Event{Type: mdentity.EventOutput},
				HasEvent: true,
			},
		},
		Contexts: []mdentity.Context{
			{TypeID: ctxTypeID, Name: "run-1"},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, res.ExecutionID)
	require.Len(t, res.ArtifactIDs, 1)
	require.Len(t, res.ContextIDs, 1)

	events, err := m.FindEventsByExecutions(ctx, []int64{res.ExecutionID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, res.ArtifactIDs[0], events[0].ArtifactID)

	execs, err := m.FindExecutionsByContext(ctx, res.ContextIDs[0], nil)
	require.NoError(t, err)
	require.Len(t, execs.Items, 1)
	require.Equal(t, res.ExecutionID, execs.Items[0].ID)

	arts, err := m.FindArtifactsByContext(ctx, res.ContextIDs[0], nil)
	require.NoError(t, err)
	require.Len(t, arts.Items, 1)
	require.Equal(t, res.ArtifactIDs[0], arts.Items[0].ID)
}

// With ReuseContextIfAlreadyExist, a context with no id that already
// exists by (type_id, name) is resolved to its existing id rather than
// attempted as a fresh create.
func TestPutExecutionReusesExistingContextByName(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	execTypeID, err := m.CreateType(ctx, mdtype.ExecutionKind, mdtype.Type{Name: "Trainer"})
	require.NoError(t, err)
	ctxTypeID, err := m.CreateType(ctx, mdtype.ContextKind, mdtype.Type{Name: "Run"})
	require.NoError(t, err)

	ctxID, err := m.CreateContext(ctx, mdentity.Context{TypeID: ctxTypeID, Name: "shared-run"})
	require.NoError(t, err)

	res, err := PutExecution(ctx, m, Request{
		Execution:                  mdentity.Execution{TypeID: execTypeID},
		HasExecution:               true,
		Contexts:                   []mdentity.Context{{TypeID: ctxTypeID, Name: "shared-run"}},
		ReuseContextIfAlreadyExist: true,
	})
	require.NoError(t, err)
	require.Equal(t, []int64{ctxID}, res.ContextIDs)
}

// Without the reuse flag, a context with no id whose name collides with an
// existing row is a plain create attempt and fails, rather than silently
// turning into an update of the existing row.
func TestPutExecutionWithoutReuseFailsOnNameCollision(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	execTypeID, err := m.CreateType(ctx, mdtype.ExecutionKind, mdtype.Type{Name: "Trainer"})
	require.NoError(t, err)
	ctxTypeID, err := m.CreateType(ctx, mdtype.ContextKind, mdtype.Type{Name: "Run"})
	require.NoError(t, err)
	_, err = m.CreateContext(ctx, mdentity.Context{TypeID: ctxTypeID, Name: "shared-run"})
	require.NoError(t, err)

	_, err = PutExecution(ctx, m, Request{
		Execution:    mdentity.Execution{TypeID: execTypeID},
		HasExecution: true,
		Contexts:     []mdentity.Context{{TypeID: ctxTypeID, Name: "shared-run"}},
	})
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.AlreadyExists))
}

// A context id supplied up front (e.g. resolved by a prior call) is treated
// as an update target, not a create — so a losing race on it surfaces its
// error unchanged rather than as Aborted, since there was nothing "new" to
// race on in the first place.
func TestPutExecutionDoesNotAbortOnExistingContextID(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	execTypeID, err := m.CreateType(ctx, mdtype.ExecutionKind, mdtype.Type{Name: "Trainer"})
	require.NoError(t, err)
	ctxTypeID, err := m.CreateType(ctx, mdtype.ContextKind, mdtype.Type{Name: "Run"})
	require.NoError(t, err)
	ctxID, err := m.CreateContext(ctx, mdentity.Context{TypeID: ctxTypeID, Name: "existing-run"})
	require.NoError(t, err)

	res, err := PutExecution(ctx, m, Request{
		Execution:                  mdentity.Execution{TypeID: execTypeID},
		HasExecution:               true,
		Contexts:                   []mdentity.Context{{ID: ctxID, TypeID: ctxTypeID, Name: "existing-run"}},
		ReuseContextIfAlreadyExist: true,
	})
	require.NoError(t, err)
	require.Equal(t, []int64{ctxID}, res.ContextIDs)
}

func TestPutExecutionUnknownTypeFails(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	_, err := PutExecution(ctx, m, Request{
		Execution:    mdentity.Execution{TypeID: 999},
		HasExecution: true,
	})
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.NotFound))
}

func TestPutExecutionRequiresExecution(t *testing.T) {
	m := newTestMAO(t)
	_, err := PutExecution(context.Background(), m, Request{})
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.InvalidArgument))
}

func TestPutExecutionRejectsMismatchedEventExecutionID(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	execTypeID, err := m.CreateType(ctx, mdtype.ExecutionKind, mdtype.Type{Name: "Trainer"})
	require.NoError(t, err)
	artTypeID, err := m.CreateType(ctx, mdtype.ArtifactKind, mdtype.Type{Name: "Model"})
	require.NoError(t, err)

	_, err = PutExecution(ctx, m, Request{
		Execution:    mdentity.Execution{TypeID: execTypeID},
		HasExecution: true,
		ArtifactsAndEvents: []ArtifactAndEvent{{
			Artifact: mdentity.Artifact{TypeID: artTypeID},
			Event:    mdentity.Event{ExecutionID: 999, HasExecutionID: true, Type: mdentity.EventOutput},
			HasEvent: true,
		}},
	})
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.InvalidArgument))
}
