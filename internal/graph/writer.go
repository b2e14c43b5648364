// Package graph implements GraphWriter: the compound transactional write
// behind PutExecution — one execution, its artifacts and their events, the
// contexts it and its artifacts belong to, and the association/attribution
// edges tying them together — composed from internal/entity's upsert
// primitives and run inside a single unit of work by the caller.
package graph

import (
	"context"

	"google.golang.org/grpc/codes"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/entity"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
)

// ArtifactAndEvent pairs an artifact to upsert with the event recording how
// the execution touched it. HasEvent is false for an artifact attached to
// the execution with no event (the original allows this).
type ArtifactAndEvent struct {
	Artifact mdentity.Artifact
	Event    mdentity.Event
	HasEvent bool
}

// Request is everything a single PutExecution call writes atomically.
// HasExecution must be set for Execution to count as present — a zero
// Execution is otherwise indistinguishable from "none given", and step 1
// rejects the latter with InvalidArgument.
type Request struct {
	Execution    mdentity.Execution
	HasExecution bool

	ArtifactsAndEvents []ArtifactAndEvent
	Contexts           []mdentity.Context

	// ReuseContextIfAlreadyExist, for each context carrying no id, looks
	// the context up by (type_id, name) before upserting and uses its id
	// if found. Outside this mode a context upsert is id-presence-only:
	// a name collision on create fails rather than silently updating.
	ReuseContextIfAlreadyExist bool
}

// Result reports the ids PutExecution assigned or resolved.
type Result struct {
	ExecutionID int64
	ArtifactIDs []int64
	ContextIDs  []int64
}

// PutExecution runs the full compound write. It must execute inside a
// single transaction (the caller opens one via the TransactionExecutor and
// passes a ctx already carrying it down to the MAO); on a concurrent first-
// creation race on one of req.Contexts under ReuseContextIfAlreadyExist, it
// returns Aborted so the caller's retry-the-whole-request contract
// (spec.md §5) kicks in, rather than leaving a partially-applied write for
// the caller to reconcile by hand.
func PutExecution(ctx context.Context, m mao.MAO, req Request) (Result, error) {
	if !req.HasExecution {
		return Result{}, mderr.InvalidArgument("PutExecution request must carry an execution")
	}

	execID, err := entity.UpsertExecution(ctx, m, req.Execution)
	if err != nil {
		return Result{}, err
	}

	artifactIDs := make([]int64, 0, len(req.ArtifactsAndEvents))
	for _, ae := range req.ArtifactsAndEvents {
		if ae.HasEvent && ae.Event.HasExecutionID && ae.Event.ExecutionID != execID {
			return Result{}, mderr.InvalidArgument(
				"event execution_id=%d does not match the request's execution_id=%d", ae.Event.ExecutionID, execID)
		}

		artID, err := entity.UpsertArtifact(ctx, m, ae.Artifact)
		if err != nil {
			return Result{}, err
		}
		artifactIDs = append(artifactIDs, artID)

		if ae.HasEvent {
			ev := ae.Event
			ev.ExecutionID = execID
			ev.HasExecutionID = true
			ev.ArtifactID = artID
			ev.HasArtifactID = true
			if _, err := m.CreateEvent(ctx, ev); err != nil && !mderr.Is(err, codes.AlreadyExists) {
				return Result{}, err
			}
		}
	}

	contextIDs := make([]int64, 0, len(req.Contexts))
	for _, c := range req.Contexts {
		ctxID, err := upsertContext(ctx, m, c, req.ReuseContextIfAlreadyExist)
		if err != nil {
			return Result{}, err
		}
		contextIDs = append(contextIDs, ctxID)

		if err := entity.InsertAssociationIfNotExist(ctx, m, ctxID, execID); err != nil {
			return Result{}, err
		}
		for _, artID := range artifactIDs {
			if err := entity.InsertAttributionIfNotExist(ctx, m, ctxID, artID); err != nil {
				return Result{}, err
			}
		}
	}

	return Result{ExecutionID: execID, ArtifactIDs: artifactIDs, ContextIDs: contextIDs}, nil
}

// upsertContext resolves one context's id per spec.md §4.3 step 4: in
// reuse mode, a context with no id is looked up by (type_id, name) first
// and its id used if found; otherwise — or if the lookup misses — it falls
// through to EntityUpsert's id-presence-only create/update. A concurrent
// first creator winning the create race is surfaced as Aborted only in
// reuse mode, since outside it a name collision on create is meant to fail
// as given rather than be reinterpreted as a race.
func upsertContext(ctx context.Context, m mao.MAO, c mdentity.Context, reuse bool) (int64, error) {
	if reuse && !c.HasID() {
		existing, err := m.FindContextByTypeIDAndName(ctx, c.TypeID, c.Name)
		if err == nil {
			return existing.ID, nil
		}
		if !mderr.Is(err, codes.NotFound) {
			return 0, err
		}
	}

	id, err := entity.UpsertContext(ctx, m, c)
	if err != nil {
		if reuse && !c.HasID() && mderr.Is(err, codes.AlreadyExists) {
			return 0, mderr.Aborted(
				"context %q was created concurrently by another request; retry PutExecution", c.Name)
		}
		return 0, err
	}
	return id, nil
}
