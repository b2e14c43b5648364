package store

import (
	"context"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/txn"
)

// PutEvents creates each event inside one transaction. Events are
// immutable once created, so there is no update path — only insert.
func (s *Store) PutEvents(ctx context.Context, events []mdentity.Event) error {
	return s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		for _, e := range events {
			if _, err := s.mao.CreateEvent(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetEventsByArtifactIDs(ctx context.Context, artifactIDs []int64) ([]mdentity.Event, error) {
	var out []mdentity.Event
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindEventsByArtifacts(ctx, artifactIDs)
		return err
	})
	return out, err
}

func (s *Store) GetEventsByExecutionIDs(ctx context.Context, executionIDs []int64) ([]mdentity.Event, error) {
	var out []mdentity.Event
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindEventsByExecutions(ctx, executionIDs)
		return err
	})
	return out, err
}
