package sqlmao

import (
	"context"
	"sort"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
)

// QueryLineageGraph performs a breadth-first expansion from the seed
// artifacts, alternating artifact->execution and execution->artifact hops
// through the events table, for up to q.MaxNumHops rounds. The walk is not
// filtered: q.BoundaryArtifacts and q.BoundaryExecutions are accepted but
// not applied at any hop.
func (d *DB) QueryLineageGraph(ctx context.Context, q mao.LineageQuery) (mao.LineageSubgraph, error) {
	if len(q.SeedArtifactIDs) == 0 {
		return mao.LineageSubgraph{}, nil
	}

	seenArtifacts := map[int64]bool{}
	seenExecutions := map[int64]bool{}
	var allEvents []mdentity.Event

	frontier := append([]int64(nil), q.SeedArtifactIDs...)
	for _, id := range frontier {
		seenArtifacts[id] = true
	}

	hops := q.MaxNumHops
	if hops <= 0 {
		hops = 1
	}

	for hop := int64(0); hop < hops && len(frontier) > 0; hop++ {
		events, err := d.FindEventsByArtifacts(ctx, frontier)
		if err != nil {
			return mao.LineageSubgraph{}, mderr.Internal("lineage expand artifacts: %v", err)
		}
		var nextExecutions []int64
		for _, e := range events {
			allEvents = append(allEvents, e)
			if !seenExecutions[e.ExecutionID] {
				seenExecutions[e.ExecutionID] = true
				nextExecutions = append(nextExecutions, e.ExecutionID)
			}
		}
		if len(nextExecutions) == 0 {
			break
		}

		execEvents, err := d.FindEventsByExecutions(ctx, nextExecutions)
		if err != nil {
			return mao.LineageSubgraph{}, mderr.Internal("lineage expand executions: %v", err)
		}
		var nextArtifacts []int64
		for _, e := range execEvents {
			allEvents = append(allEvents, e)
			if !seenArtifacts[e.ArtifactID] {
				seenArtifacts[e.ArtifactID] = true
				nextArtifacts = append(nextArtifacts, e.ArtifactID)
			}
		}
		frontier = nextArtifacts
	}

	out := mao.LineageSubgraph{
		ArtifactIDs:  keys(seenArtifacts),
		ExecutionIDs: keys(seenExecutions),
		Events:       dedupeEvents(allEvents),
	}
	if q.HasMaxNodeSize && q.MaxNodeSize > 0 {
		out = truncateSubgraph(out, q.MaxNodeSize)
	}
	return out, nil
}

func keys(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// dedupeEvents drops duplicate edges picked up from both directions of the
// artifact<->execution expansion (the same event row can surface once via
// FindEventsByArtifacts and once via FindEventsByExecutions).
func dedupeEvents(events []mdentity.Event) []mdentity.Event {
	type key struct {
		exec, art int64
		typ       mdentity.EventType
		millis    int64
	}
	seen := map[key]bool{}
	var out []mdentity.Event
	for _, e := range events {
		k := key{e.ExecutionID, e.ArtifactID, e.Type, e.MillisSinceEpoch}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// truncateSubgraph caps the combined artifact+execution node count at
// maxNodeSize, dropping the tail deterministically (by id) and filtering
// events whose endpoints fell outside the kept set.
func truncateSubgraph(sg mao.LineageSubgraph, maxNodeSize int64) mao.LineageSubgraph {
	total := int64(len(sg.ArtifactIDs) + len(sg.ExecutionIDs))
	if total <= maxNodeSize {
		return sg
	}
	keepArtifacts := sg.ArtifactIDs
	keepExecutions := sg.ExecutionIDs
	if int64(len(keepArtifacts)) > maxNodeSize {
		keepArtifacts = keepArtifacts[:maxNodeSize]
		keepExecutions = nil
	} else {
		remaining := maxNodeSize - int64(len(keepArtifacts))
		if int64(len(keepExecutions)) > remaining {
			keepExecutions = keepExecutions[:remaining]
		}
	}
	artifactSet := map[int64]bool{}
	for _, id := range keepArtifacts {
		artifactSet[id] = true
	}
	executionSet := map[int64]bool{}
	for _, id := range keepExecutions {
		executionSet[id] = true
	}
	var events []mdentity.Event
	for _, e := range sg.Events {
		if artifactSet[e.ArtifactID] && executionSet[e.ExecutionID] {
			events = append(events, e)
		}
	}
	return mao.LineageSubgraph{ArtifactIDs: keepArtifacts, ExecutionIDs: keepExecutions, Events: events}
}
