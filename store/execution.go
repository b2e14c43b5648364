package store

import (
	"context"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/graph"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/txn"
)

// PutExecution runs GraphWriter.PutExecution inside one transaction: it is
// the only write path that touches an execution, its artifacts and events,
// its contexts, and the association/attribution edges between them all at
// once, so a reader never observes the execution without its artifacts or
// the reverse.
func (s *Store) PutExecution(ctx context.Context, req graph.Request) (graph.Result, error) {
	var res graph.Result
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		res, err = graph.PutExecution(ctx, s.mao, req)
		return err
	})
	return res, err
}
