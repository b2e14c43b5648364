package typesys

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/sqlmao"
)

func newTestMAO(t *testing.T) mao.MAO {
	t.Helper()
	db, err := sqlmao.Open(filepath.Join(t.TempDir(), "metadata.sqlite"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.InitSchema(context.Background()))
	return db
}

func TestCheckCompatible(t *testing.T) {
	old := map[string]mdtype.PropertyType{"split": mdtype.String}

	merged, err := CheckCompatible(old, map[string]mdtype.PropertyType{"split": mdtype.String, "rows": mdtype.Int}, true, true)
	require.NoError(t, err)
	require.Equal(t, map[string]mdtype.PropertyType{"split": mdtype.String, "rows": mdtype.Int}, merged)

	_, err = CheckCompatible(old, map[string]mdtype.PropertyType{"split": mdtype.Int}, true, true)
	require.Error(t, err)

	_, err = CheckCompatible(old, map[string]mdtype.PropertyType{"rows": mdtype.Int}, true, false)
	require.Error(t, err, "omitting a stored field without can_omit_fields must fail")

	merged, err = CheckCompatible(old, map[string]mdtype.PropertyType{"rows": mdtype.Int}, true, true)
	require.NoError(t, err)
	require.Equal(t, map[string]mdtype.PropertyType{"split": mdtype.String, "rows": mdtype.Int}, merged,
		"an allowed omission still keeps the stored field in the merged map")

	_, err = CheckCompatible(old, map[string]mdtype.PropertyType{"split": mdtype.String, "rows": mdtype.Int}, false, true)
	require.Error(t, err, "adding a field without can_add_fields must fail")
}

func TestUpsertTypeCreateThenGrowSchema(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	id, err := UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{
		Name:       "DataSet",
		Properties: map[string]mdtype.PropertyType{"split": mdtype.String},
	}, true, false)
	require.NoError(t, err)

	id2, err := UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{
		Name:       "DataSet",
		Properties: map[string]mdtype.PropertyType{"split": mdtype.String, "rows": mdtype.Int},
	}, true, false)
	require.NoError(t, err)
	require.Equal(t, id, id2)

	got, err := GetTypeByNameAndVersion(ctx, m, mdtype.ArtifactKind, "DataSet", "")
	require.NoError(t, err)
	require.Equal(t, mdtype.String, got.Properties["split"])
	require.Equal(t, mdtype.Int, got.Properties["rows"])
}

func TestUpsertTypeRejectsIncompatibleFieldChange(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	_, err := UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{
		Name:       "DataSet",
		Properties: map[string]mdtype.PropertyType{"split": mdtype.String},
	}, true, true)
	require.NoError(t, err)

	_, err = UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{
		Name:       "DataSet",
		Properties: map[string]mdtype.PropertyType{"split": mdtype.Int},
	}, true, true)
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.AlreadyExists))
}

func TestUpsertTypeRejectsOmittedFieldsWithoutCanOmit(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	_, err := UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{
		Name:       "DataSet",
		Properties: map[string]mdtype.PropertyType{"split": mdtype.String},
	}, true, false)
	require.NoError(t, err)

	_, err = UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{
		Name:       "DataSet",
		Properties: map[string]mdtype.PropertyType{},
	}, true, false)
	require.Error(t, err)
	require.True(t, mderr.Is(err, codes.AlreadyExists))

	id, err := UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{
		Name:       "DataSet",
		Properties: map[string]mdtype.PropertyType{},
	}, true, true)
	require.NoError(t, err)

	got, err := GetTypesById(ctx, m, mdtype.ArtifactKind, []int64{id})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, mdtype.String, got[0].Properties["split"], "an allowed omission must not remove the stored field")
}

func TestReconcileBaseTypeLinksThenRejectsRepoint(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	_, err := UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{Name: "Model"}, true, true)
	require.NoError(t, err)
	_, err = UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{Name: "SavedModel"}, true, true)
	require.NoError(t, err)

	childID, err := UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{
		Name:     "SavedModel",
		BaseType: &mdtype.BaseType{TypeName: "Model"},
	}, true, true)
	require.NoError(t, err)

	got, err := GetTypesById(ctx, m, mdtype.ArtifactKind, []int64{childID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].BaseType)
	require.Equal(t, "Model", got[0].BaseType.TypeName)

	// Relinking to a different parent is rejected.
	_, err = UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{Name: "OtherBase"}, true, true)
	require.NoError(t, err)
	_, err = UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{
		Name:     "SavedModel",
		BaseType: &mdtype.BaseType{TypeName: "OtherBase"},
	}, true, true)
	require.Error(t, err)

	// Re-asserting the same parent is a no-op.
	_, err = UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{
		Name:     "SavedModel",
		BaseType: &mdtype.BaseType{TypeName: "Model"},
	}, true, true)
	require.NoError(t, err)
}

func TestGetAllTypesOfKindExcludesSimpleTypes(t *testing.T) {
	m := newTestMAO(t)
	ctx := context.Background()

	// "DataSet" is a bootstrapped simple type name; a user type with a
	// different name should still show up in the listing.
	_, err := m.CreateType(ctx, mdtype.ArtifactKind, mdtype.Type{Name: "DataSet"})
	require.NoError(t, err)
	_, err = UpsertType(ctx, m, mdtype.ArtifactKind, mdtype.Type{Name: "CustomArtifact"}, true, true)
	require.NoError(t, err)

	all, err := GetAllTypesOfKind(ctx, m, mdtype.ArtifactKind)
	require.NoError(t, err)
	var names []string
	for _, ty := range all {
		names = append(names, ty.Name)
	}
	require.Contains(t, names, "CustomArtifact")
	require.NotContains(t, names, "DataSet")
}
