// Package mao declares the MetadataAccessObject contract: typed CRUD and
// query primitives over the physical store. The core (typesys/entity/graph/
// store) only ever talks to this interface — never to SQL or a driver
// directly — matching spec.md §1's "out of scope: the underlying relational
// data-access layer".
package mao

import (
	"context"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"
)

// MAO is the full set of primitives the core composes. All methods run
// against whatever transaction is active on ctx; callers never manage
// connections or transactions directly.
type MAO interface {
	// Types
	CreateType(ctx context.Context, kind mdtype.Kind, t mdtype.Type) (int64, error)
	UpdateType(ctx context.Context, kind mdtype.Kind, t mdtype.Type) error
	FindTypeByNameAndVersion(ctx context.Context, kind mdtype.Kind, name, version string) (mdtype.Type, error)
	FindTypesByID(ctx context.Context, kind mdtype.Kind, ids []int64) ([]mdtype.Type, error)
	FindAllTypes(ctx context.Context, kind mdtype.Kind) ([]mdtype.Type, error)

	// Type inheritance
	FindParentTypesByTypeID(ctx context.Context, kind mdtype.Kind, typeIDs []int64) (map[int64][]mdtype.Type, error)
	CreateParentTypeInheritanceLink(ctx context.Context, kind mdtype.Kind, typeID, parentTypeID int64) error

	// Artifacts
	CreateArtifact(ctx context.Context, a mdentity.Artifact) (int64, error)
	UpdateArtifact(ctx context.Context, a mdentity.Artifact) error
	FindArtifactsByID(ctx context.Context, ids []int64) ([]mdentity.Artifact, error)
	FindArtifactsByURI(ctx context.Context, uri string) ([]mdentity.Artifact, error)
	FindArtifactByTypeIDAndName(ctx context.Context, typeID int64, name string) (mdentity.Artifact, error)
	ListArtifacts(ctx context.Context, filter ArtifactFilter, opts *ListOptions) (ListResult[mdentity.Artifact], error)

	// Executions
	CreateExecution(ctx context.Context, e mdentity.Execution) (int64, error)
	UpdateExecution(ctx context.Context, e mdentity.Execution) error
	FindExecutionsByID(ctx context.Context, ids []int64) ([]mdentity.Execution, error)
	FindExecutionByTypeIDAndName(ctx context.Context, typeID int64, name string) (mdentity.Execution, error)
	ListExecutions(ctx context.Context, typeID int64, hasType bool, opts *ListOptions) (ListResult[mdentity.Execution], error)

	// Contexts
	CreateContext(ctx context.Context, c mdentity.Context) (int64, error)
	UpdateContext(ctx context.Context, c mdentity.Context) error
	FindContextsByID(ctx context.Context, ids []int64) ([]mdentity.Context, error)
	FindContextByTypeIDAndName(ctx context.Context, typeID int64, name string) (mdentity.Context, error)
	ListContexts(ctx context.Context, typeID int64, hasType bool, opts *ListOptions) (ListResult[mdentity.Context], error)

	// Events
	CreateEvent(ctx context.Context, e mdentity.Event) (int64, error)
	FindEventsByArtifacts(ctx context.Context, artifactIDs []int64) ([]mdentity.Event, error)
	FindEventsByExecutions(ctx context.Context, executionIDs []int64) ([]mdentity.Event, error)

	// Associations / Attributions
	CreateAssociation(ctx context.Context, a mdentity.Association) (int64, error)
	CreateAttribution(ctx context.Context, a mdentity.Attribution) (int64, error)
	FindContextsByArtifact(ctx context.Context, artifactID int64) ([]mdentity.Context, error)
	FindContextsByExecution(ctx context.Context, executionID int64) ([]mdentity.Context, error)
	FindArtifactsByContext(ctx context.Context, contextID int64, opts *ListOptions) (ListResult[mdentity.Artifact], error)
	FindExecutionsByContext(ctx context.Context, contextID int64, opts *ListOptions) (ListResult[mdentity.Execution], error)

	// Parent contexts
	CreateParentContext(ctx context.Context, pc mdentity.ParentContext) error
	FindParentContextsByContext(ctx context.Context, contextID int64) ([]mdentity.Context, error)
	FindChildrenContextsByContext(ctx context.Context, contextID int64) ([]mdentity.Context, error)

	// Lineage
	QueryLineageGraph(ctx context.Context, q LineageQuery) (LineageSubgraph, error)

	// Lifecycle
	InitSchema(ctx context.Context) error
	DowngradeSchema(ctx context.Context, toVersion int64) error
}
