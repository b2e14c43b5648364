package mao

import "github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"

// ListOptions carries optional pagination/ordering for list-style queries.
// A nil *ListOptions on a request means "return all" per spec.md §6.
type ListOptions struct {
	PageSize  int32
	OrderBy   string // property/field name to order by; "" means id order
	Desc      bool
	PageToken string
}

// ListResult wraps a page of items plus the cursor for the next page, empty
// when the list is exhausted.
type ListResult[T any] struct {
	Items         []T
	NextPageToken string
}

// ArtifactFilter narrows ListArtifacts to a type, a uri set, or both; used
// by GetLineageGraph to resolve seed artifacts.
type ArtifactFilter struct {
	TypeID  int64
	HasType bool
	URIs    []string
}

// LineageQuery carries the resolved parameters for a lineage traversal.
type LineageQuery struct {
	SeedArtifactIDs    []int64
	MaxNumHops         int64
	MaxNodeSize        int64
	HasMaxNodeSize     bool
	BoundaryArtifacts  string // boundary predicate expression, opaque to the core
	BoundaryExecutions string
}

// LineageSubgraph is the traversal result: the node ids and edges reached
// within MaxNumHops of the seed set.
type LineageSubgraph struct {
	ArtifactIDs  []int64
	ExecutionIDs []int64
	Events       []mdentity.Event
}
