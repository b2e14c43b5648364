package store

import (
	"context"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/txn"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/typesys"
)

// TypeWriteOptions carries the compatibility flags every type write
// request accepts. The store only implements the all-fields-match mode: a
// caller that sets AllFieldsMatch=false is asking for a per-field partial
// match that this store does not support and gets Unimplemented back.
// CanAddFields/CanOmitFields are then threaded into TypeEngine.UpsertType.
type TypeWriteOptions struct {
	AllFieldsMatch bool
	CanAddFields   bool
	CanOmitFields  bool
}

func (s *Store) PutArtifactType(ctx context.Context, t mdtype.Type, opts TypeWriteOptions) (int64, error) {
	return s.putType(ctx, mdtype.ArtifactKind, t, opts)
}

func (s *Store) PutExecutionType(ctx context.Context, t mdtype.Type, opts TypeWriteOptions) (int64, error) {
	return s.putType(ctx, mdtype.ExecutionKind, t, opts)
}

func (s *Store) PutContextType(ctx context.Context, t mdtype.Type, opts TypeWriteOptions) (int64, error) {
	return s.putType(ctx, mdtype.ContextKind, t, opts)
}

func (s *Store) putType(ctx context.Context, kind mdtype.Kind, t mdtype.Type, opts TypeWriteOptions) (int64, error) {
	if !opts.AllFieldsMatch {
		return 0, mderr.Unimplemented("PutType without all_fields_match is not supported")
	}
	var id int64
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		id, err = typesys.UpsertType(ctx, s.mao, kind, t, opts.CanAddFields, opts.CanOmitFields)
		return err
	})
	return id, err
}

// PutTypes upserts all three type families in one transaction, so a failure
// on any one type leaves none of the three families' writes applied. A base
// type is resolved within the same family as the type that names it.
func (s *Store) PutTypes(ctx context.Context, artifactTypes, executionTypes, contextTypes []mdtype.Type, opts TypeWriteOptions) (artifactIDs, executionIDs, contextIDs []int64, err error) {
	if !opts.AllFieldsMatch {
		return nil, nil, nil, mderr.Unimplemented("PutTypes without all_fields_match is not supported")
	}
	err = s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		artifactIDs, err = typesys.UpsertTypes(ctx, s.mao, mdtype.ArtifactKind, artifactTypes, opts.CanAddFields, opts.CanOmitFields)
		if err != nil {
			return err
		}
		executionIDs, err = typesys.UpsertTypes(ctx, s.mao, mdtype.ExecutionKind, executionTypes, opts.CanAddFields, opts.CanOmitFields)
		if err != nil {
			return err
		}
		contextIDs, err = typesys.UpsertTypes(ctx, s.mao, mdtype.ContextKind, contextTypes, opts.CanAddFields, opts.CanOmitFields)
		return err
	})
	return artifactIDs, executionIDs, contextIDs, err
}

func (s *Store) GetArtifactType(ctx context.Context, name, version string) (mdtype.Type, error) {
	return s.getType(ctx, mdtype.ArtifactKind, name, version)
}

func (s *Store) GetExecutionType(ctx context.Context, name, version string) (mdtype.Type, error) {
	return s.getType(ctx, mdtype.ExecutionKind, name, version)
}

func (s *Store) GetContextType(ctx context.Context, name, version string) (mdtype.Type, error) {
	return s.getType(ctx, mdtype.ContextKind, name, version)
}

func (s *Store) getType(ctx context.Context, kind mdtype.Kind, name, version string) (mdtype.Type, error) {
	var t mdtype.Type
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		t, err = typesys.GetTypeByNameAndVersion(ctx, s.mao, kind, name, version)
		return err
	})
	return t, err
}

func (s *Store) GetArtifactTypesByID(ctx context.Context, ids []int64) ([]mdtype.Type, error) {
	return s.getTypesByID(ctx, mdtype.ArtifactKind, ids)
}

func (s *Store) GetExecutionTypesByID(ctx context.Context, ids []int64) ([]mdtype.Type, error) {
	return s.getTypesByID(ctx, mdtype.ExecutionKind, ids)
}

func (s *Store) GetContextTypesByID(ctx context.Context, ids []int64) ([]mdtype.Type, error) {
	return s.getTypesByID(ctx, mdtype.ContextKind, ids)
}

func (s *Store) getTypesByID(ctx context.Context, kind mdtype.Kind, ids []int64) ([]mdtype.Type, error) {
	var ts []mdtype.Type
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		ts, err = typesys.GetTypesById(ctx, s.mao, kind, ids)
		return err
	})
	return ts, err
}

func (s *Store) GetArtifactTypes(ctx context.Context) ([]mdtype.Type, error) {
	return s.getAllTypes(ctx, mdtype.ArtifactKind)
}

func (s *Store) GetExecutionTypes(ctx context.Context) ([]mdtype.Type, error) {
	return s.getAllTypes(ctx, mdtype.ExecutionKind)
}

func (s *Store) GetContextTypes(ctx context.Context) ([]mdtype.Type, error) {
	return s.getAllTypes(ctx, mdtype.ContextKind)
}

func (s *Store) getAllTypes(ctx context.Context, kind mdtype.Kind) ([]mdtype.Type, error) {
	var ts []mdtype.Type
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		ts, err = typesys.GetAllTypesOfKind(ctx, s.mao, kind)
		return err
	})
	return ts, err
}
