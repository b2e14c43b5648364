package sqlmao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/clockutil"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
)

func (d *DB) CreateArtifact(ctx context.Context, a mdentity.Artifact) (int64, error) {
	props, err := encodeProperties(a.Properties)
	if err != nil {
		return 0, mderr.Internal("%v", err)
	}
	custom, err := encodeProperties(a.CustomProperties)
	if err != nil {
		return 0, mderr.Internal("%v", err)
	}
	now := clockutil.MillisSinceEpoch(d.clock.Now())
	var uri any
	if a.HasURI {
		uri = a.URI
	}
	var name any
	if a.HasName {
		name = a.Name
	}
	res, err := d.tx(ctx).ExecContext(ctx,
		`INSERT INTO artifacts (type_id, uri, name, properties, custom_properties, state,
		                        create_time_since_epoch, last_update_time_since_epoch)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.TypeID, uri, name, props, custom, int(a.State), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, mderr.AlreadyExists("artifact type_id=%d name=%q already exists", a.TypeID, a.Name)
		}
		if isForeignKeyViolation(err) {
			return 0, mderr.NotFound("artifact type_id=%d not found", a.TypeID)
		}
		return 0, mderr.Internal("create artifact: %v", err)
	}
	return res.LastInsertId()
}

func (d *DB) UpdateArtifact(ctx context.Context, a mdentity.Artifact) error {
	props, err := encodeProperties(a.Properties)
	if err != nil {
		return mderr.Internal("%v", err)
	}
	custom, err := encodeProperties(a.CustomProperties)
	if err != nil {
		return mderr.Internal("%v", err)
	}
	now := clockutil.MillisSinceEpoch(d.clock.Now())
	var uri any
	if a.HasURI {
		uri = a.URI
	}
	var name any
	if a.HasName {
		name = a.Name
	}
	res, err := d.tx(ctx).ExecContext(ctx,
		`UPDATE artifacts SET uri = ?, name = ?, properties = ?, custom_properties = ?, state = ?,
		                       last_update_time_since_epoch = ?
		 WHERE id = ?`,
		uri, name, props, custom, int(a.State), now, a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return mderr.AlreadyExists("artifact type_id=%d name=%q already exists", a.TypeID, a.Name)
		}
		return mderr.Internal("update artifact id=%d: %v", a.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return mderr.NotFound("artifact id=%d not found", a.ID)
	}
	return nil
}

func (d *DB) FindArtifactsByID(ctx context.Context, ids []int64) ([]mdentity.Artifact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(ids)
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM artifacts WHERE id IN (%s)`, artifactColumns, placeholders),
		args...,
	)
	if err != nil {
		return nil, mderr.Internal("find artifacts by id: %v", err)
	}
	defer rows.Close()
	return scanArtifacts(rows)
}

func (d *DB) FindArtifactsByURI(ctx context.Context, uri string) ([]mdentity.Artifact, error) {
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM artifacts WHERE uri = ? ORDER BY id`, artifactColumns),
		uri,
	)
	if err != nil {
		return nil, mderr.Internal("find artifacts by uri: %v", err)
	}
	defer rows.Close()
	return scanArtifacts(rows)
}

func (d *DB) FindArtifactByTypeIDAndName(ctx context.Context, typeID int64, name string) (mdentity.Artifact, error) {
	row := d.tx(ctx).QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM artifacts WHERE type_id = ? AND name = ?`, artifactColumns),
		typeID, name,
	)
	return scanArtifact(row)
}

func (d *DB) ListArtifacts(ctx context.Context, filter mao.ArtifactFilter, opts *mao.ListOptions) (mao.ListResult[mdentity.Artifact], error) {
	where := []string{"1=1"}
	var args []any
	if filter.HasType {
		where = append(where, "type_id = ?")
		args = append(args, filter.TypeID)
	}
	if len(filter.URIs) > 0 {
		placeholders, uriArgs := stringInClause(filter.URIs)
		where = append(where, fmt.Sprintf("uri IN (%s)", placeholders))
		args = append(args, uriArgs...)
	}

	suffix, pageArgs, _, limit, err := pageClause(opts)
	if err != nil {
		return mao.ListResult[mdentity.Artifact]{}, err
	}
	args = append(args, pageArgs...)

	query := fmt.Sprintf(`SELECT %s FROM artifacts WHERE %s %s`, artifactColumns, joinAnd(where), suffix)
	rows, err := d.tx(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return mao.ListResult[mdentity.Artifact]{}, mderr.Internal("list artifacts: %v", err)
	}
	defer rows.Close()
	items, err := scanArtifacts(rows)
	if err != nil {
		return mao.ListResult[mdentity.Artifact]{}, err
	}
	return paginateArtifacts(items, limit, opts)
}

func paginateArtifacts(items []mdentity.Artifact, limit int, opts *mao.ListOptions) (mao.ListResult[mdentity.Artifact], error) {
	if limit <= 0 || len(items) <= limit {
		return mao.ListResult[mdentity.Artifact]{Items: items}, nil
	}
	col := "id"
	if opts != nil {
		col = orderColumn(opts.OrderBy)
	}
	page := items[:limit]
	last := page[limit-1]
	token := encodeCursor(cursor{OrderBy: col, LastVal: artifactOrderValue(last, col), LastID: last.ID})
	return mao.ListResult[mdentity.Artifact]{Items: page, NextPageToken: token}, nil
}

func artifactOrderValue(a mdentity.Artifact, col string) int64 {
	switch col {
	case "create_time_since_epoch":
		return a.CreateTimeSinceEpoch
	case "last_update_time_since_epoch":
		return a.LastUpdateTimeSinceEpoch
	default:
		return a.ID
	}
}

const artifactColumns = `id, type_id, uri, name, properties, custom_properties, state,
                          create_time_since_epoch, last_update_time_since_epoch`

func scanArtifact(row *sql.Row) (mdentity.Artifact, error) {
	var a mdentity.Artifact
	var uri, name sql.NullString
	var props, custom string
	var state int
	err := row.Scan(&a.ID, &a.TypeID, &uri, &name, &props, &custom, &state,
		&a.CreateTimeSinceEpoch, &a.LastUpdateTimeSinceEpoch)
	if errors.Is(err, sql.ErrNoRows) {
		return mdentity.Artifact{}, mderr.NotFound("artifact not found")
	}
	if err != nil {
		return mdentity.Artifact{}, mderr.Internal("scan artifact: %v", err)
	}
	return hydrateArtifact(a, uri, name, props, custom, state)
}

func scanArtifacts(rows *sql.Rows) ([]mdentity.Artifact, error) {
	var out []mdentity.Artifact
	for rows.Next() {
		var a mdentity.Artifact
		var uri, name sql.NullString
		var props, custom string
		var state int
		if err := rows.Scan(&a.ID, &a.TypeID, &uri, &name, &props, &custom, &state,
			&a.CreateTimeSinceEpoch, &a.LastUpdateTimeSinceEpoch); err != nil {
			return nil, mderr.Internal("scan artifact: %v", err)
		}
		full, err := hydrateArtifact(a, uri, name, props, custom, state)
		if err != nil {
			return nil, err
		}
		out = append(out, full)
	}
	return out, rows.Err()
}

func hydrateArtifact(a mdentity.Artifact, uri, name sql.NullString, propsBlob, customBlob string, state int) (mdentity.Artifact, error) {
	a.HasURI = uri.Valid
	a.URI = uri.String
	a.HasName = name.Valid
	a.Name = name.String
	a.State = mdentity.ArtifactState(state)
	props, err := decodeProperties(propsBlob)
	if err != nil {
		return mdentity.Artifact{}, mderr.Internal("%v", err)
	}
	custom, err := decodeProperties(customBlob)
	if err != nil {
		return mdentity.Artifact{}, mderr.Internal("%v", err)
	}
	a.Properties = props
	a.CustomProperties = custom
	return a, nil
}
