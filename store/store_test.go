package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/graph"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/lineage"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"
)

// fakeClock lets PutArtifacts' optimistic-concurrency sleep loop be driven
// deterministically: Sleep advances the clock instead of blocking the test.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time        { return c.t }
func (c *fakeClock) Sleep(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Create(context.Background(), filepath.Join(t.TempDir(), "metadata.sqlite"), nil, MigrationOptions{})
	require.NoError(t, err)
	return s
}

func TestCreateThenPutExecutionThenLineage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	execTypeID, err := s.PutExecutionType(ctx, mdtype.Type{Name: "Trainer"}, TypeWriteOptions{AllFieldsMatch: true})
	require.NoError(t, err)
	artTypeID, err := s.PutArtifactType(ctx, mdtype.Type{Name: "Model"}, TypeWriteOptions{AllFieldsMatch: true})
	require.NoError(t, err)
	ctxTypeID, err := s.PutContextType(ctx, mdtype.Type{Name: "Run"}, TypeWriteOptions{AllFieldsMatch: true})
	require.NoError(t, err)

	res, err := s.PutExecution(ctx, graph.Request{
		Execution:    mdentity.Execution{TypeID: execTypeID, State: mdentity.ExecutionComplete},
		HasExecution: true,
		ArtifactsAndEvents: []graph.ArtifactAndEvent{
			{
				Artifact: mdentity.Artifact{TypeID: artTypeID, Name: "model", HasName: true, State: mdentity.ArtifactLive},
				Event:    mdentity.Event{Type: mdentity.EventOutput},
				HasEvent: true,
			},
		},
		Contexts: []mdentity.Context{{TypeID: ctxTypeID, Name: "run-1"}},
	})
	require.NoError(t, err)

	sg, err := s.GetLineageGraph(ctx, lineage.Options{SeedArtifactIDs: res.ArtifactIDs})
	require.NoError(t, err)
	require.ElementsMatch(t, res.ArtifactIDs, sg.ArtifactIDs)
	require.ElementsMatch(t, []int64{res.ExecutionID}, sg.ExecutionIDs)
}

func TestCreateWithDowngradeReturnsCancelledAndNoStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.sqlite")
	_, err := Create(context.Background(), path, nil, MigrationOptions{})
	require.NoError(t, err)

	got, err := Create(context.Background(), path, nil, MigrationOptions{
		DowngradeToSchemaVersion:    3,
		HasDowngradeToSchemaVersion: true,
	})
	require.Nil(t, got)
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.Canceled))
	require.Contains(t, err.Error(), "3")
}

func TestPutArtifactTypeRequiresAllFieldsMatch(t *testing.T) {
	s := newTestStore(t)
	_, err := s.PutArtifactType(context.Background(), mdtype.Type{Name: "DataSet"}, TypeWriteOptions{})
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.Unimplemented))
}

func TestPutArtifactsAbortsWhenUpdateTimeChanged(t *testing.T) {
	s := newTestStore(t)
	s.SetClock(&fakeClock{t: time.Unix(1000, 0)})
	ctx := context.Background()

	typeID, err := s.PutArtifactType(ctx, mdtype.Type{Name: "DataSet"}, TypeWriteOptions{AllFieldsMatch: true})
	require.NoError(t, err)
	ids, err := s.PutArtifacts(ctx, []mdentity.Artifact{{TypeID: typeID, Name: "a", HasName: true}}, false)
	require.NoError(t, err)

	stored, err := s.GetArtifactsByID(ctx, ids)
	require.NoError(t, err)

	_, err = s.PutArtifacts(ctx, []mdentity.Artifact{
		{ID: ids[0], TypeID: typeID, LastUpdateTimeSinceEpoch: stored[0].LastUpdateTimeSinceEpoch - 1},
	}, true)
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.FailedPrecondition))
}

func TestPutArtifactsAdvancesClockPastStoredTimeOnMatch(t *testing.T) {
	s := newTestStore(t)
	clock := &fakeClock{t: time.UnixMilli(1000)}
	s.SetClock(clock)
	ctx := context.Background()

	typeID, err := s.PutArtifactType(ctx, mdtype.Type{Name: "DataSet"}, TypeWriteOptions{AllFieldsMatch: true})
	require.NoError(t, err)
	ids, err := s.PutArtifacts(ctx, []mdentity.Artifact{{TypeID: typeID, Name: "a", HasName: true}}, false)
	require.NoError(t, err)

	stored, err := s.GetArtifactsByID(ctx, ids)
	require.NoError(t, err)

	// clock.Now() still equals the stored update time here, so the sleep
	// loop must advance it before the write proceeds.
	_, err = s.PutArtifacts(ctx, []mdentity.Artifact{
		{ID: ids[0], TypeID: typeID, LastUpdateTimeSinceEpoch: stored[0].LastUpdateTimeSinceEpoch, State: mdentity.ArtifactLive},
	}, true)
	require.NoError(t, err)

	after, err := s.GetArtifactsByID(ctx, ids)
	require.NoError(t, err)
	require.Greater(t, after[0].LastUpdateTimeSinceEpoch, stored[0].LastUpdateTimeSinceEpoch)
}

func TestGetArtifactsByURIRejectsBothFieldsSet(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetArtifactsByURI(context.Background(), GetArtifactsByURIRequest{
		URI: "/tmp/a", HasURI: true, URIs: []string{"/tmp/b"},
	})
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.InvalidArgument))
}

func TestGetArtifactsByURIMatchesDeprecatedSingularField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	typeID, err := s.PutArtifactType(ctx, mdtype.Type{Name: "DataSet"}, TypeWriteOptions{AllFieldsMatch: true})
	require.NoError(t, err)
	_, err = s.PutArtifacts(ctx, []mdentity.Artifact{{TypeID: typeID, URI: "/tmp/a", HasURI: true}}, false)
	require.NoError(t, err)

	found, err := s.GetArtifactsByURI(ctx, GetArtifactsByURIRequest{URI: "/tmp/a", HasURI: true})
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestPutEventsPutParentContextsAndPutAttributionsAndAssociations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	artTypeID, err := s.PutArtifactType(ctx, mdtype.Type{Name: "DataSet"}, TypeWriteOptions{AllFieldsMatch: true})
	require.NoError(t, err)
	execTypeID, err := s.PutExecutionType(ctx, mdtype.Type{Name: "Trainer"}, TypeWriteOptions{AllFieldsMatch: true})
	require.NoError(t, err)
	ctxTypeID, err := s.PutContextType(ctx, mdtype.Type{Name: "Run"}, TypeWriteOptions{AllFieldsMatch: true})
	require.NoError(t, err)

	artIDs, err := s.PutArtifacts(ctx, []mdentity.Artifact{{TypeID: artTypeID, Name: "a", HasName: true}}, false)
	require.NoError(t, err)
	execIDs, err := s.PutExecutions(ctx, []mdentity.Execution{{TypeID: execTypeID}})
	require.NoError(t, err)
	ctxIDs, err := s.PutContexts(ctx, []mdentity.Context{
		{TypeID: ctxTypeID, Name: "parent"}, {TypeID: ctxTypeID, Name: "child"},
	})
	require.NoError(t, err)

	require.NoError(t, s.PutEvents(ctx, []mdentity.Event{{
		ExecutionID: execIDs[0], HasExecutionID: true, ArtifactID: artIDs[0], HasArtifactID: true, Type: mdentity.EventOutput,
	}}))
	events, err := s.GetEventsByArtifactIDs(ctx, artIDs)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, s.PutAttributionsAndAssociations(ctx,
		[]Attribution{{ContextID: ctxIDs[0], ArtifactID: artIDs[0]}},
		[]Association{{ContextID: ctxIDs[0], ExecutionID: execIDs[0]}},
	))
	// Repeating the same links is tolerated, not an error.
	require.NoError(t, s.PutAttributionsAndAssociations(ctx,
		[]Attribution{{ContextID: ctxIDs[0], ArtifactID: artIDs[0]}},
		[]Association{{ContextID: ctxIDs[0], ExecutionID: execIDs[0]}},
	))

	require.NoError(t, s.PutParentContexts(ctx, []mdentity.ParentContext{
		{ParentContextID: ctxIDs[0], ChildContextID: ctxIDs[1]},
	}))

	contextsByArtifact, err := s.GetContextsByArtifact(ctx, artIDs[0])
	require.NoError(t, err)
	require.Len(t, contextsByArtifact, 1)

	children, err := s.GetChildrenContextsByContext(ctx, ctxIDs[0])
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, ctxIDs[1], children[0].ID)

	parents, err := s.GetParentContextsByContext(ctx, ctxIDs[1])
	require.NoError(t, err)
	require.Len(t, parents, 1)
	require.Equal(t, ctxIDs[0], parents[0].ID)
}

func TestGetArtifactsPaginatesThroughFacade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	typeID, err := s.PutArtifactType(ctx, mdtype.Type{Name: "DataSet"}, TypeWriteOptions{AllFieldsMatch: true})
	require.NoError(t, err)

	const total = 5
	toCreate := make([]mdentity.Artifact, total)
	for i := range toCreate {
		toCreate[i] = mdentity.Artifact{TypeID: typeID, Name: string(rune('a' + i)), HasName: true}
	}
	_, err = s.PutArtifacts(ctx, toCreate, false)
	require.NoError(t, err)

	seen := map[int64]bool{}
	token := ""
	for {
		page, err := s.GetArtifacts(ctx, mao.ArtifactFilter{TypeID: typeID, HasType: true},
			&mao.ListOptions{PageSize: 2, PageToken: token})
		require.NoError(t, err)
		for _, a := range page.Items {
			seen[a.ID] = true
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	require.Len(t, seen, total)
}
