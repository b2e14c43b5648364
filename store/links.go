package store

import (
	"context"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/entity"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/txn"
)

// Attribution is one (context, artifact) membership pair to link.
type Attribution struct {
	ContextID  int64
	ArtifactID int64
}

// Association is one (context, execution) membership pair to link.
type Association struct {
	ContextID   int64
	ExecutionID int64
}

// PutAttributionsAndAssociations links every pair in one transaction,
// tolerating links that already exist.
func (s *Store) PutAttributionsAndAssociations(ctx context.Context, attributions []Attribution, associations []Association) error {
	return s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		for _, a := range attributions {
			if err := entity.InsertAttributionIfNotExist(ctx, s.mao, a.ContextID, a.ArtifactID); err != nil {
				return err
			}
		}
		for _, a := range associations {
			if err := entity.InsertAssociationIfNotExist(ctx, s.mao, a.ContextID, a.ExecutionID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) PutParentContexts(ctx context.Context, parentContexts []mdentity.ParentContext) error {
	return s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		for _, pc := range parentContexts {
			if err := s.mao.CreateParentContext(ctx, pc); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetContextsByArtifact(ctx context.Context, artifactID int64) ([]mdentity.Context, error) {
	var out []mdentity.Context
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindContextsByArtifact(ctx, artifactID)
		return err
	})
	return out, err
}

func (s *Store) GetContextsByExecution(ctx context.Context, executionID int64) ([]mdentity.Context, error) {
	var out []mdentity.Context
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindContextsByExecution(ctx, executionID)
		return err
	})
	return out, err
}

func (s *Store) GetArtifactsByContext(ctx context.Context, contextID int64, opts *mao.ListOptions) (mao.ListResult[mdentity.Artifact], error) {
	var out mao.ListResult[mdentity.Artifact]
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindArtifactsByContext(ctx, contextID, opts)
		return err
	})
	return out, err
}

func (s *Store) GetExecutionsByContext(ctx context.Context, contextID int64, opts *mao.ListOptions) (mao.ListResult[mdentity.Execution], error) {
	var out mao.ListResult[mdentity.Execution]
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindExecutionsByContext(ctx, contextID, opts)
		return err
	})
	return out, err
}

func (s *Store) GetParentContextsByContext(ctx context.Context, contextID int64) ([]mdentity.Context, error) {
	var out []mdentity.Context
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindParentContextsByContext(ctx, contextID)
		return err
	})
	return out, err
}

func (s *Store) GetChildrenContextsByContext(ctx context.Context, contextID int64) ([]mdentity.Context, error) {
	var out []mdentity.Context
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindChildrenContextsByContext(ctx, contextID)
		return err
	})
	return out, err
}
