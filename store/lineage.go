package store

import (
	"context"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/lineage"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/txn"
)

// GetLineageGraph resolves and runs a lineage traversal inside one
// transaction, so the seed resolution and the walk see a consistent view
// of the store.
func (s *Store) GetLineageGraph(ctx context.Context, opts lineage.Options) (mao.LineageSubgraph, error) {
	var out mao.LineageSubgraph
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = lineage.Get(ctx, s.mao, opts)
		return err
	})
	return out, err
}
