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

func (d *DB) CreateContext(ctx context.Context, c mdentity.Context) (int64, error) {
	props, err := encodeProperties(c.Properties)
	if err != nil {
		return 0, mderr.Internal("%v", err)
	}
	custom, err := encodeProperties(c.CustomProperties)
	if err != nil {
		return 0, mderr.Internal("%v", err)
	}
	now := clockutil.MillisSinceEpoch(d.clock.Now())
	res, err := d.tx(ctx).ExecContext(ctx,
		`INSERT INTO contexts (type_id, name, properties, custom_properties,
		                       create_time_since_epoch, last_update_time_since_epoch)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.TypeID, c.Name, props, custom, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, mderr.AlreadyExists("context type_id=%d name=%q already exists", c.TypeID, c.Name)
		}
		if isForeignKeyViolation(err) {
			return 0, mderr.NotFound("context type_id=%d not found", c.TypeID)
		}
		return 0, mderr.Internal("create context: %v", err)
	}
	return res.LastInsertId()
}

func (d *DB) UpdateContext(ctx context.Context, c mdentity.Context) error {
	props, err := encodeProperties(c.Properties)
	if err != nil {
		return mderr.Internal("%v", err)
	}
	custom, err := encodeProperties(c.CustomProperties)
	if err != nil {
		return mderr.Internal("%v", err)
	}
	now := clockutil.MillisSinceEpoch(d.clock.Now())
	res, err := d.tx(ctx).ExecContext(ctx,
		`UPDATE contexts SET name = ?, properties = ?, custom_properties = ?,
		                       last_update_time_since_epoch = ?
		 WHERE id = ?`,
		c.Name, props, custom, now, c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return mderr.AlreadyExists("context type_id=%d name=%q already exists", c.TypeID, c.Name)
		}
		return mderr.Internal("update context id=%d: %v", c.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return mderr.NotFound("context id=%d not found", c.ID)
	}
	return nil
}

func (d *DB) FindContextsByID(ctx context.Context, ids []int64) ([]mdentity.Context, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(ids)
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM contexts WHERE id IN (%s)`, contextColumns, placeholders),
		args...,
	)
	if err != nil {
		return nil, mderr.Internal("find contexts by id: %v", err)
	}
	defer rows.Close()
	return scanContexts(rows)
}

func (d *DB) FindContextByTypeIDAndName(ctx context.Context, typeID int64, name string) (mdentity.Context, error) {
	row := d.tx(ctx).QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM contexts WHERE type_id = ? AND name = ?`, contextColumns),
		typeID, name,
	)
	return scanContext(row)
}

func (d *DB) ListContexts(ctx context.Context, typeID int64, hasType bool, opts *mao.ListOptions) (mao.ListResult[mdentity.Context], error) {
	where := []string{"1=1"}
	var args []any
	if hasType {
		where = append(where, "type_id = ?")
		args = append(args, typeID)
	}

	suffix, pageArgs, _, limit, err := pageClause(opts)
	if err != nil {
		return mao.ListResult[mdentity.Context]{}, err
	}
	args = append(args, pageArgs...)

	query := fmt.Sprintf(`SELECT %s FROM contexts WHERE %s %s`, contextColumns, joinAnd(where), suffix)
	rows, err := d.tx(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return mao.ListResult[mdentity.Context]{}, mderr.Internal("list contexts: %v", err)
	}
	defer rows.Close()
	items, err := scanContexts(rows)
	if err != nil {
		return mao.ListResult[mdentity.Context]{}, err
	}
	return paginateContexts(items, limit, opts)
}

func paginateContexts(items []mdentity.Context, limit int, opts *mao.ListOptions) (mao.ListResult[mdentity.Context], error) {
	if limit <= 0 || len(items) <= limit {
		return mao.ListResult[mdentity.Context]{Items: items}, nil
	}
	col := "id"
	if opts != nil {
		col = orderColumn(opts.OrderBy)
	}
	page := items[:limit]
	last := page[limit-1]
	token := encodeCursor(cursor{OrderBy: col, LastVal: contextOrderValue(last, col), LastID: last.ID})
	return mao.ListResult[mdentity.Context]{Items: page, NextPageToken: token}, nil
}

func contextOrderValue(c mdentity.Context, col string) int64 {
	switch col {
	case "create_time_since_epoch":
		return c.CreateTimeSinceEpoch
	case "last_update_time_since_epoch":
		return c.LastUpdateTimeSinceEpoch
	default:
		return c.ID
	}
}

const contextColumns = `id, type_id, name, properties, custom_properties,
                         create_time_since_epoch, last_update_time_since_epoch`

func scanContext(row *sql.Row) (mdentity.Context, error) {
	var c mdentity.Context
	var props, custom string
	err := row.Scan(&c.ID, &c.TypeID, &c.Name, &props, &custom,
		&c.CreateTimeSinceEpoch, &c.LastUpdateTimeSinceEpoch)
	if errors.Is(err, sql.ErrNoRows) {
		return mdentity.Context{}, mderr.NotFound("context not found")
	}
	if err != nil {
		return mdentity.Context{}, mderr.Internal("scan context: %v", err)
	}
	return hydrateContext(c, props, custom)
}

func scanContexts(rows *sql.Rows) ([]mdentity.Context, error) {
	var out []mdentity.Context
	for rows.Next() {
		var c mdentity.Context
		var props, custom string
		if err := rows.Scan(&c.ID, &c.TypeID, &c.Name, &props, &custom,
			&c.CreateTimeSinceEpoch, &c.LastUpdateTimeSinceEpoch); err != nil {
			return nil, mderr.Internal("scan context: %v", err)
		}
		full, err := hydrateContext(c, props, custom)
		if err != nil {
			return nil, err
		}
		out = append(out, full)
	}
	return out, rows.Err()
}

func hydrateContext(c mdentity.Context, propsBlob, customBlob string) (mdentity.Context, error) {
	props, err := decodeProperties(propsBlob)
	if err != nil {
		return mdentity.Context{}, mderr.Internal("%v", err)
	}
	custom, err := decodeProperties(customBlob)
	if err != nil {
		return mdentity.Context{}, mderr.Internal("%v", err)
	}
	c.Properties = props
	c.CustomProperties = custom
	return c, nil
}
