// Package lineage resolves a GetLineageGraph request into a concrete
// mao.LineageQuery: picking the seed artifact set (explicit ids, or a
// type/uri filter resolved through ListArtifacts), clamping the hop budget,
// and rejecting an empty seed set outright rather than traversing nothing.
package lineage

import (
	"context"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
)

// maxHops is the hard ceiling on how many artifact<->execution hops a
// single traversal may take, regardless of what the caller asks for — an
// unbounded walk over a large store is never acceptable from an ad hoc
// query.
const maxHops = 20

// Options is the resolved-but-not-yet-seeded shape of a GetLineageGraph
// call: either explicit seed artifact ids, or a type/uri filter the seeds
// are resolved from.
type Options struct {
	SeedArtifactIDs []int64

	SeedTypeID    int64
	HasSeedTypeID bool
	SeedURIs      []string

	MaxNumHops  int64
	MaxNodeSize int64
	HasMaxNodeSize bool

	BoundaryArtifacts  string
	BoundaryExecutions string
}

// Get resolves opts to a seed set and runs the traversal. It returns
// InvalidArgument if no seed criterion is set, and NotFound if the seed
// criteria match nothing (unlike the list/by-uri reads, which return an
// empty result).
func Get(ctx context.Context, m mao.MAO, opts Options) (mao.LineageSubgraph, error) {
	if len(opts.SeedArtifactIDs) == 0 && !opts.HasSeedTypeID && len(opts.SeedURIs) == 0 {
		return mao.LineageSubgraph{}, mderr.InvalidArgument(
			"GetLineageGraph requires seed_artifact_ids, a seed type, or seed uris")
	}

	seeds := opts.SeedArtifactIDs
	if len(seeds) == 0 {
		filter := mao.ArtifactFilter{TypeID: opts.SeedTypeID, HasType: opts.HasSeedTypeID, URIs: opts.SeedURIs}
		resolved, err := m.ListArtifacts(ctx, filter, nil)
		if err != nil {
			return mao.LineageSubgraph{}, err
		}
		seeds = make([]int64, len(resolved.Items))
		for i, a := range resolved.Items {
			seeds[i] = a.ID
		}
	}
	if len(seeds) == 0 {
		return mao.LineageSubgraph{}, mderr.NotFound("no artifacts match the lineage seed criteria")
	}

	if opts.MaxNumHops < 0 {
		return mao.LineageSubgraph{}, mderr.InvalidArgument("max_num_hops must not be negative, got %d", opts.MaxNumHops)
	}
	hops := opts.MaxNumHops
	if hops == 0 || hops > maxHops {
		hops = maxHops
	}

	return m.QueryLineageGraph(ctx, mao.LineageQuery{
		SeedArtifactIDs:    seeds,
		MaxNumHops:         hops,
		MaxNodeSize:        opts.MaxNodeSize,
		HasMaxNodeSize:     opts.HasMaxNodeSize,
		BoundaryArtifacts:  opts.BoundaryArtifacts,
		BoundaryExecutions: opts.BoundaryExecutions,
	})
}
