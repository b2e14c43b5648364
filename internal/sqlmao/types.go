package sqlmao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"
)

func (d *DB) CreateType(ctx context.Context, kind mdtype.Kind, t mdtype.Type) (int64, error) {
	propsBlob, err := encodePropertyTypes(t.Properties)
	if err != nil {
		return 0, mderr.Internal("%v", err)
	}
	res, err := d.tx(ctx).ExecContext(ctx,
		`INSERT INTO types (kind, name, version, properties) VALUES (?, ?, ?, ?)`,
		kind.String(), t.Name, t.Version, propsBlob,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, mderr.AlreadyExists("%s %q version %q already exists", kind, t.Name, t.Version)
		}
		return 0, mderr.Internal("create type %q: %v", t.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, mderr.Internal("create type %q: %v", t.Name, err)
	}
	return id, nil
}

func (d *DB) UpdateType(ctx context.Context, kind mdtype.Kind, t mdtype.Type) error {
	propsBlob, err := encodePropertyTypes(t.Properties)
	if err != nil {
		return mderr.Internal("%v", err)
	}
	res, err := d.tx(ctx).ExecContext(ctx,
		`UPDATE types SET properties = ? WHERE id = ? AND kind = ?`,
		propsBlob, t.ID, kind.String(),
	)
	if err != nil {
		return mderr.Internal("update type id=%d: %v", t.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return mderr.NotFound("type id=%d not found", t.ID)
	}
	return nil
}

func (d *DB) FindTypeByNameAndVersion(ctx context.Context, kind mdtype.Kind, name, version string) (mdtype.Type, error) {
	row := d.tx(ctx).QueryRowContext(ctx,
		`SELECT id, name, version, properties FROM types WHERE kind = ? AND name = ? AND version = ?`,
		kind.String(), name, version,
	)
	return scanType(row)
}

func (d *DB) FindTypesByID(ctx context.Context, kind mdtype.Kind, ids []int64) ([]mdtype.Type, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(ids)
	args = append([]any{kind.String()}, args...)
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT id, name, version, properties FROM types WHERE kind = ? AND id IN (%s)`, placeholders),
		args...,
	)
	if err != nil {
		return nil, mderr.Internal("find types by id: %v", err)
	}
	defer rows.Close()
	return scanTypes(rows)
}

func (d *DB) FindAllTypes(ctx context.Context, kind mdtype.Kind) ([]mdtype.Type, error) {
	rows, err := d.tx(ctx).QueryContext(ctx,
		`SELECT id, name, version, properties FROM types WHERE kind = ? ORDER BY id`,
		kind.String(),
	)
	if err != nil {
		return nil, mderr.Internal("find all types: %v", err)
	}
	defer rows.Close()
	return scanTypes(rows)
}

func (d *DB) FindParentTypesByTypeID(ctx context.Context, kind mdtype.Kind, typeIDs []int64) (map[int64][]mdtype.Type, error) {
	result := make(map[int64][]mdtype.Type, len(typeIDs))
	if len(typeIDs) == 0 {
		return result, nil
	}
	placeholders, args := inClause(typeIDs)
	args = append([]any{kind.String()}, args...)
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT pt.type_id, t.id, t.name, t.version, t.properties
		             FROM parent_types pt JOIN types t ON t.id = pt.parent_type_id
		             WHERE pt.kind = ? AND pt.type_id IN (%s)`, placeholders),
		args...,
	)
	if err != nil {
		return nil, mderr.Internal("find parent types: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var childID int64
		var t mdtype.Type
		var propsBlob string
		if err := rows.Scan(&childID, &t.ID, &t.Name, &t.Version, &propsBlob); err != nil {
			return nil, mderr.Internal("scan parent type: %v", err)
		}
		props, err := decodePropertyTypes(propsBlob)
		if err != nil {
			return nil, mderr.Internal("%v", err)
		}
		t.Properties = props
		result[childID] = append(result[childID], t)
	}
	return result, rows.Err()
}

func (d *DB) CreateParentTypeInheritanceLink(ctx context.Context, kind mdtype.Kind, typeID, parentTypeID int64) error {
	_, err := d.tx(ctx).ExecContext(ctx,
		`INSERT INTO parent_types (type_id, kind, parent_type_id) VALUES (?, ?, ?)`,
		typeID, kind.String(), parentTypeID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return mderr.NotFound("type id=%d or parent type id=%d not found", typeID, parentTypeID)
		}
		return mderr.Internal("create parent type link: %v", err)
	}
	return nil
}

func scanType(row *sql.Row) (mdtype.Type, error) {
	var t mdtype.Type
	var propsBlob string
	err := row.Scan(&t.ID, &t.Name, &t.Version, &propsBlob)
	if errors.Is(err, sql.ErrNoRows) {
		return mdtype.Type{}, mderr.NotFound("type not found")
	}
	if err != nil {
		return mdtype.Type{}, mderr.Internal("scan type: %v", err)
	}
	props, err := decodePropertyTypes(propsBlob)
	if err != nil {
		return mdtype.Type{}, mderr.Internal("%v", err)
	}
	t.Properties = props
	return t, nil
}

func scanTypes(rows *sql.Rows) ([]mdtype.Type, error) {
	var out []mdtype.Type
	for rows.Next() {
		var t mdtype.Type
		var propsBlob string
		if err := rows.Scan(&t.ID, &t.Name, &t.Version, &propsBlob); err != nil {
			return nil, mderr.Internal("scan type: %v", err)
		}
		props, err := decodePropertyTypes(propsBlob)
		if err != nil {
			return nil, mderr.Internal("%v", err)
		}
		t.Properties = props
		out = append(out, t)
	}
	return out, rows.Err()
}
