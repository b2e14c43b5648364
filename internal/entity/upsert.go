// Package entity implements EntityUpsert: the idempotent
// create-or-update rule shared by artifacts, executions, and contexts, plus
// the insert-if-absent rule for the association/attribution membership
// edges that PutExecution composes on top of them.
package entity

import (
	"context"

	"google.golang.org/grpc/codes"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
)

// UpsertArtifact creates a when it carries no id, or updates the existing
// row by id otherwise. There is no name-based lookup: a create whose name
// collides with an existing (type_id, name) row fails with AlreadyExists
// from the MAO rather than silently turning into an update.
func UpsertArtifact(ctx context.Context, m mao.MAO, a mdentity.Artifact) (int64, error) {
	if a.HasID() {
		if err := m.UpdateArtifact(ctx, a); err != nil {
			return 0, err
		}
		return a.ID, nil
	}
	return m.CreateArtifact(ctx, a)
}

// UpsertExecution mirrors UpsertArtifact for executions.
func UpsertExecution(ctx context.Context, m mao.MAO, e mdentity.Execution) (int64, error) {
	if e.HasID() {
		if err := m.UpdateExecution(ctx, e); err != nil {
			return 0, err
		}
		return e.ID, nil
	}
	return m.CreateExecution(ctx, e)
}

// UpsertContext mirrors UpsertArtifact for contexts. Looking an existing
// context up by (type_id, name) before creating is GraphWriter's job, gated
// on reuse_context_if_already_exist — this function only ever creates or
// updates-by-id.
func UpsertContext(ctx context.Context, m mao.MAO, c mdentity.Context) (int64, error) {
	if c.HasID() {
		if err := m.UpdateContext(ctx, c); err != nil {
			return 0, err
		}
		return c.ID, nil
	}
	return m.CreateContext(ctx, c)
}

// InsertAssociationIfNotExist links a context and execution, tolerating a
// concurrent or repeated request that already created the same link.
func InsertAssociationIfNotExist(ctx context.Context, m mao.MAO, contextID, executionID int64) error {
	_, err := m.CreateAssociation(ctx, mdentity.Association{ContextID: contextID, ExecutionID: executionID})
	if err != nil && !mderr.Is(err, codes.AlreadyExists) {
		return err
	}
	return nil
}

// InsertAttributionIfNotExist links a context and artifact, tolerating a
// concurrent or repeated request that already created the same link.
func InsertAttributionIfNotExist(ctx context.Context, m mao.MAO, contextID, artifactID int64) error {
	_, err := m.CreateAttribution(ctx, mdentity.Attribution{ContextID: contextID, ArtifactID: artifactID})
	if err != nil && !mderr.Is(err, codes.AlreadyExists) {
		return err
	}
	return nil
}
