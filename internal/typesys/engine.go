// Package typesys implements the type-lifecycle engine: idempotent
// upsert-by-name-or-id, schema-compatibility checking on update, and
// single-parent base-type inheritance reconciliation, the way
// ml_metadata's TypeEngine composes over a MetadataAccessObject.
package typesys

import (
	"context"

	"google.golang.org/grpc/codes"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/simpletypes"
)

// CheckCompatible reports whether newProps can replace the already-stored
// oldProps under the given add/omit permissions: a field present in both
// must keep its type; a field missing from newProps counts against
// canOmitFields; a field absent from oldProps counts against canAddFields.
// On success it returns the merged map (oldProps ∪ (newProps \ oldProps)).
func CheckCompatible(oldProps, newProps map[string]mdtype.PropertyType, canAddFields, canOmitFields bool) (map[string]mdtype.PropertyType, error) {
	omitted := 0
	for name, oldType := range oldProps {
		newType, ok := newProps[name]
		if !ok {
			omitted++
			continue
		}
		if newType != oldType {
			return nil, mderr.FailedPrecondition(
				"field %q changed type from %s to %s, which is not allowed", name, oldType, newType)
		}
	}
	if omitted > 0 && !canOmitFields {
		return nil, mderr.FailedPrecondition(
			"%d stored field(s) are omitted from the given type; set can_omit_fields to allow", omitted)
	}
	for name := range newProps {
		if _, ok := oldProps[name]; !ok {
			if !canAddFields {
				return nil, mderr.FailedPrecondition(
					"given type adds field %q not present in the stored type; set can_add_fields to allow", name)
			}
			break
		}
	}
	return mergeProperties(oldProps, newProps), nil
}

// mergeProperties returns the union of oldProps and newProps, assuming
// CheckCompatible already passed — so any name in both agrees on type.
func mergeProperties(oldProps, newProps map[string]mdtype.PropertyType) map[string]mdtype.PropertyType {
	merged := make(map[string]mdtype.PropertyType, len(oldProps)+len(newProps))
	for k, v := range oldProps {
		merged[k] = v
	}
	for k, v := range newProps {
		merged[k] = v
	}
	return merged
}

// ReconcileBaseType applies a Put*Type request's base_type field against
// the type's current parent link. A nil baseType is a no-op (the request
// didn't set the field). An Unset baseType asks to remove the link, which
// this store does not support. Otherwise the type may have zero parents
// (link the named parent), one parent matching the request (no-op), one
// parent that differs (rejected — base type is not repointable), or more
// than one (rejected — this store never produces multi-parent links itself
// and refuses to reconcile one found on an externally-seeded row).
func ReconcileBaseType(ctx context.Context, m mao.MAO, kind mdtype.Kind, typeID int64, baseType *mdtype.BaseType) error {
	if baseType == nil {
		return nil
	}
	if baseType.Unset {
		return mderr.Unimplemented("removing a base type link is not supported")
	}

	parents, err := m.FindParentTypesByTypeID(ctx, kind, []int64{typeID})
	if err != nil {
		return err
	}
	existing := parents[typeID]
	switch len(existing) {
	case 0:
		parent, err := m.FindTypeByNameAndVersion(ctx, kind, baseType.TypeName, "")
		if err != nil {
			return err
		}
		return m.CreateParentTypeInheritanceLink(ctx, kind, typeID, parent.ID)
	case 1:
		if existing[0].Name == baseType.TypeName {
			return nil
		}
		return mderr.FailedPrecondition(
			"type id=%d already has base type %q, cannot change it to %q", typeID, existing[0].Name, baseType.TypeName)
	default:
		return mderr.FailedPrecondition("type id=%d has more than one base type, which this store does not support reconciling", typeID)
	}
}

// UpsertType looks t up by id, or by name+version when t carries no id. A
// name+version miss creates t; an id miss is NotFound. A property declared
// with the Unknown type is rejected with InvalidArgument before any lookup.
// For an existing type it checks newProps against the existing row's
// properties under canAddFields/canOmitFields and merges when compatible —
// matching the original's "types are append-only" schema evolution rule.
// canAddFields is ignored on create: a brand new type stores exactly the
// properties it was given. An incompatible update is reported as
// AlreadyExists ("exists but differs"), wrapping the underlying
// FailedPrecondition detail. Returns the type's id either way.
func UpsertType(ctx context.Context, m mao.MAO, kind mdtype.Kind, t mdtype.Type, canAddFields, canOmitFields bool) (int64, error) {
	for name, pt := range t.Properties {
		if pt == mdtype.Unknown {
			return 0, mderr.InvalidArgument("%s %q property %q has no property type", kind, t.Name, name)
		}
	}

	var existing mdtype.Type
	var err error

	if t.HasID() {
		found, ferr := m.FindTypesByID(ctx, kind, []int64{t.ID})
		if ferr != nil {
			return 0, ferr
		}
		if len(found) == 0 {
			return 0, mderr.NotFound("%s id=%d not found", kind, t.ID)
		}
		existing = found[0]
	} else {
		existing, err = m.FindTypeByNameAndVersion(ctx, kind, t.Name, t.Version)
		if mderr.Is(err, codes.NotFound) {
			id, cerr := m.CreateType(ctx, kind, t)
			if cerr != nil {
				return 0, cerr
			}
			if rerr := ReconcileBaseType(ctx, m, kind, id, t.BaseType); rerr != nil {
				return 0, rerr
			}
			return id, nil
		}
		if err != nil {
			return 0, err
		}
	}

	if existing.Name != t.Name {
		return 0, mderr.FailedPrecondition(
			"%s id=%d has name %q, given name %q does not match", kind, existing.ID, existing.Name, t.Name)
	}

	merged, cerr := CheckCompatible(existing.Properties, t.Properties, canAddFields, canOmitFields)
	if cerr != nil {
		return 0, mderr.AlreadyExists("%s %q exists with incompatible properties: %v", kind, existing.Name, cerr)
	}
	updated := existing
	updated.Properties = merged
	if err := m.UpdateType(ctx, kind, updated); err != nil {
		return 0, err
	}
	if err := ReconcileBaseType(ctx, m, kind, existing.ID, t.BaseType); err != nil {
		return 0, err
	}
	return existing.ID, nil
}

// UpsertTypes applies UpsertType to each element in order, stopping at the
// first failure.
func UpsertTypes(ctx context.Context, m mao.MAO, kind mdtype.Kind, ts []mdtype.Type, canAddFields, canOmitFields bool) ([]int64, error) {
	ids := make([]int64, 0, len(ts))
	for _, t := range ts {
		id, err := UpsertType(ctx, m, kind, t, canAddFields, canOmitFields)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetTypeByNameAndVersion fetches one type and hydrates its base_type.
func GetTypeByNameAndVersion(ctx context.Context, m mao.MAO, kind mdtype.Kind, name, version string) (mdtype.Type, error) {
	t, err := m.FindTypeByNameAndVersion(ctx, kind, name, version)
	if err != nil {
		return mdtype.Type{}, err
	}
	hydrated, err := hydrateBaseTypes(ctx, m, kind, []mdtype.Type{t})
	if err != nil {
		return mdtype.Type{}, err
	}
	return hydrated[0], nil
}

// GetTypesById fetches a batch of types by id and hydrates base_type on
// each. Missing ids are simply absent from the result, not an error.
func GetTypesById(ctx context.Context, m mao.MAO, kind mdtype.Kind, ids []int64) ([]mdtype.Type, error) {
	ts, err := m.FindTypesByID(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	return hydrateBaseTypes(ctx, m, kind, ts)
}

// GetAllTypesOfKind lists every user-created type of kind, excluding the
// bootstrapped simple types, with base_type hydrated.
func GetAllTypesOfKind(ctx context.Context, m mao.MAO, kind mdtype.Kind) ([]mdtype.Type, error) {
	all, err := m.FindAllTypes(ctx, kind)
	if err != nil {
		return nil, err
	}
	visible := all[:0]
	for _, t := range all {
		if !simpletypes.IsSimpleType(kind, t.Name) {
			visible = append(visible, t)
		}
	}
	return hydrateBaseTypes(ctx, m, kind, visible)
}

func hydrateBaseTypes(ctx context.Context, m mao.MAO, kind mdtype.Kind, ts []mdtype.Type) ([]mdtype.Type, error) {
	if len(ts) == 0 {
		return ts, nil
	}
	ids := make([]int64, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	parents, err := m.FindParentTypesByTypeID(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	out := make([]mdtype.Type, len(ts))
	for i, t := range ts {
		if p := parents[t.ID]; len(p) == 1 {
			t.BaseType = &mdtype.BaseType{TypeName: p[0].Name}
		}
		out[i] = t
	}
	return out, nil
}
