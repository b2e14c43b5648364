// Package simpletypes seeds the handful of built-in, schema-free types
// (DataSet, Model, Metrics, Statistics, Component, Context) every fresh store
// needs before a caller can create its first artifact, the way
// SimpleTypesBootstrap kickstarts ml_metadata: hidden from the generic
// list-all-types operation, but reachable by direct name lookup like any
// other type.
package simpletypes

import (
	"context"

	"google.golang.org/grpc/codes"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"
)

// definition is one built-in type: which kind it belongs to and its name.
// Simple types have no fixed schema, so Bootstrap always creates them with
// empty Properties — callers write arbitrary custom_properties instead.
type definition struct {
	kind mdtype.Kind
	name string
}

// catalog is the fixed set of simple types every store bootstraps. It
// mirrors the built-in artifact/execution/context kinds a pipeline needs
// before it has registered anything of its own.
var catalog = []definition{
	{mdtype.ArtifactKind, "DataSet"},
	{mdtype.ArtifactKind, "Model"},
	{mdtype.ArtifactKind, "Metrics"},
	{mdtype.ArtifactKind, "Statistics"},
	{mdtype.ExecutionKind, "Component"},
	{mdtype.ContextKind, "Context"},
}

var names = func() map[mdtype.Kind]map[string]bool {
	m := map[mdtype.Kind]map[string]bool{
		mdtype.ArtifactKind:  {},
		mdtype.ExecutionKind: {},
		mdtype.ContextKind:   {},
	}
	for _, d := range catalog {
		m[d.kind][d.name] = true
	}
	return m
}()

// IsSimpleType reports whether (kind, name) names a bootstrapped simple
// type. GetAllTypesOfKind uses this to exclude them from the generic
// listing, matching the original's "simple types are not returned by
// list" behavior.
func IsSimpleType(kind mdtype.Kind, name string) bool {
	return names[kind][name]
}

// Bootstrap idempotently creates every catalog entry with an empty schema
// and no version. It tolerates AlreadyExists so that two stores opened
// concurrently against a fresh database both succeed instead of one
// aborting the other's first-run race — the UNIQUE(kind, name, version)
// index is what actually prevents a duplicate row, and the MAO reports the
// losing insert as AlreadyExists.
func Bootstrap(ctx context.Context, m mao.MAO) error {
	for _, d := range catalog {
		_, err := m.CreateType(ctx, d.kind, mdtype.Type{
			Name:       d.name,
			Properties: map[string]mdtype.PropertyType{},
		})
		if err != nil && !mderr.Is(err, codes.AlreadyExists) {
			return err
		}
	}
	return nil
}
