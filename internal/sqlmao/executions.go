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

func (d *DB) CreateExecution(ctx context.Context, e mdentity.Execution) (int64, error) {
	props, err := encodeProperties(e.Properties)
	if err != nil {
		return 0, mderr.Internal("%v", err)
	}
	custom, err := encodeProperties(e.CustomProperties)
	if err != nil {
		return 0, mderr.Internal("%v", err)
	}
	now := clockutil.MillisSinceEpoch(d.clock.Now())
	var name any
	if e.HasName {
		name = e.Name
	}
	res, err := d.tx(ctx).ExecContext(ctx,
		`INSERT INTO executions (type_id, name, properties, custom_properties, state,
		                          create_time_since_epoch, last_update_time_since_epoch)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.TypeID, name, props, custom, int(e.State), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, mderr.AlreadyExists("execution type_id=%d name=%q already exists", e.TypeID, e.Name)
		}
		if isForeignKeyViolation(err) {
			return 0, mderr.NotFound("execution type_id=%d not found", e.TypeID)
		}
		return 0, mderr.Internal("create execution: %v", err)
	}
	return res.LastInsertId()
}

func (d *DB) UpdateExecution(ctx context.Context, e mdentity.Execution) error {
	props, err := encodeProperties(e.Properties)
	if err != nil {
		return mderr.Internal("%v", err)
	}
	custom, err := encodeProperties(e.CustomProperties)
	if err != nil {
		return mderr.Internal("%v", err)
	}
	now := clockutil.MillisSinceEpoch(d.clock.Now())
	var name any
	if e.HasName {
		name = e.Name
	}
	res, err := d.tx(ctx).ExecContext(ctx,
		`UPDATE executions SET name = ?, properties = ?, custom_properties = ?, state = ?,
		                         last_update_time_since_epoch = ?
		 WHERE id = ?`,
		name, props, custom, int(e.State), now, e.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return mderr.AlreadyExists("execution type_id=%d name=%q already exists", e.TypeID, e.Name)
		}
		return mderr.Internal("update execution id=%d: %v", e.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return mderr.NotFound("execution id=%d not found", e.ID)
	}
	return nil
}

func (d *DB) FindExecutionsByID(ctx context.Context, ids []int64) ([]mdentity.Execution, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(ids)
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM executions WHERE id IN (%s)`, executionColumns, placeholders),
		args...,
	)
	if err != nil {
		return nil, mderr.Internal("find executions by id: %v", err)
	}
	defer rows.Close()
	return scanExecutions(rows)
}

func (d *DB) FindExecutionByTypeIDAndName(ctx context.Context, typeID int64, name string) (mdentity.Execution, error) {
	row := d.tx(ctx).QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM executions WHERE type_id = ? AND name = ?`, executionColumns),
		typeID, name,
	)
	return scanExecution(row)
}

func (d *DB) ListExecutions(ctx context.Context, typeID int64, hasType bool, opts *mao.ListOptions) (mao.ListResult[mdentity.Execution], error) {
	where := []string{"1=1"}
	var args []any
	if hasType {
		where = append(where, "type_id = ?")
		args = append(args, typeID)
	}

	suffix, pageArgs, _, limit, err := pageClause(opts)
	if err != nil {
		return mao.ListResult[mdentity.Execution]{}, err
	}
	args = append(args, pageArgs...)

	query := fmt.Sprintf(`SELECT %s FROM executions WHERE %s %s`, executionColumns, joinAnd(where), suffix)
	rows, err := d.tx(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return mao.ListResult[mdentity.Execution]{}, mderr.Internal("list executions: %v", err)
	}
	defer rows.Close()
	items, err := scanExecutions(rows)
	if err != nil {
		return mao.ListResult[mdentity.Execution]{}, err
	}
	return paginateExecutions(items, limit, opts)
}

func paginateExecutions(items []mdentity.Execution, limit int, opts *mao.ListOptions) (mao.ListResult[mdentity.Execution], error) {
	if limit <= 0 || len(items) <= limit {
		return mao.ListResult[mdentity.Execution]{Items: items}, nil
	}
	col := "id"
	if opts != nil {
		col = orderColumn(opts.OrderBy)
	}
	page := items[:limit]
	last := page[limit-1]
	token := encodeCursor(cursor{OrderBy: col, LastVal: executionOrderValue(last, col), LastID: last.ID})
	return mao.ListResult[mdentity.Execution]{Items: page, NextPageToken: token}, nil
}

func executionOrderValue(e mdentity.Execution, col string) int64 {
	switch col {
	case "create_time_since_epoch":
		return e.CreateTimeSinceEpoch
	case "last_update_time_since_epoch":
		return e.LastUpdateTimeSinceEpoch
	default:
		return e.ID
	}
}

const executionColumns = `id, type_id, name, properties, custom_properties, state,
                           create_time_since_epoch, last_update_time_since_epoch`

func scanExecution(row *sql.Row) (mdentity.Execution, error) {
	var e mdentity.Execution
	var name sql.NullString
	var props, custom string
	var state int
	err := row.Scan(&e.ID, &e.TypeID, &name, &props, &custom, &state,
		&e.CreateTimeSinceEpoch, &e.LastUpdateTimeSinceEpoch)
	if errors.Is(err, sql.ErrNoRows) {
		return mdentity.Execution{}, mderr.NotFound("execution not found")
	}
	if err != nil {
		return mdentity.Execution{}, mderr.Internal("scan execution: %v", err)
	}
	return hydrateExecution(e, name, props, custom, state)
}

func scanExecutions(rows *sql.Rows) ([]mdentity.Execution, error) {
	var out []mdentity.Execution
	for rows.Next() {
		var e mdentity.Execution
		var name sql.NullString
		var props, custom string
		var state int
		if err := rows.Scan(&e.ID, &e.TypeID, &name, &props, &custom, &state,
			&e.CreateTimeSinceEpoch, &e.LastUpdateTimeSinceEpoch); err != nil {
			return nil, mderr.Internal("scan execution: %v", err)
		}
		full, err := hydrateExecution(e, name, props, custom, state)
		if err != nil {
			return nil, err
		}
		out = append(out, full)
	}
	return out, rows.Err()
}

func hydrateExecution(e mdentity.Execution, name sql.NullString, propsBlob, customBlob string, state int) (mdentity.Execution, error) {
	e.HasName = name.Valid
	e.Name = name.String
	e.State = mdentity.ExecutionState(state)
	props, err := decodeProperties(propsBlob)
	if err != nil {
		return mdentity.Execution{}, mderr.Internal("%v", err)
	}
	custom, err := decodeProperties(customBlob)
	if err != nil {
		return mdentity.Execution{}, mderr.Internal("%v", err)
	}
	e.Properties = props
	e.CustomProperties = custom
	return e, nil
}
