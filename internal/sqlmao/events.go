package sqlmao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
)

func (d *DB) CreateEvent(ctx context.Context, e mdentity.Event) (int64, error) {
	if !e.HasExecutionID || !e.HasArtifactID {
		return 0, mderr.InvalidArgument("event requires both execution_id and artifact_id")
	}
	res, err := d.tx(ctx).ExecContext(ctx,
		`INSERT INTO events (execution_id, artifact_id, type, path, milliseconds_since_epoch)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ExecutionID, e.ArtifactID, int(e.Type), e.Path, e.MillisSinceEpoch,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, mderr.AlreadyExists("event execution_id=%d artifact_id=%d already exists", e.ExecutionID, e.ArtifactID)
		}
		if isForeignKeyViolation(err) {
			return 0, mderr.NotFound("event execution_id=%d or artifact_id=%d not found", e.ExecutionID, e.ArtifactID)
		}
		return 0, mderr.Internal("create event: %v", err)
	}
	return res.LastInsertId()
}

func (d *DB) FindEventsByArtifacts(ctx context.Context, artifactIDs []int64) ([]mdentity.Event, error) {
	if len(artifactIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(artifactIDs)
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT execution_id, artifact_id, type, path, milliseconds_since_epoch
		             FROM events WHERE artifact_id IN (%s)`, placeholders),
		args...,
	)
	if err != nil {
		return nil, mderr.Internal("find events by artifacts: %v", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (d *DB) FindEventsByExecutions(ctx context.Context, executionIDs []int64) ([]mdentity.Event, error) {
	if len(executionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(executionIDs)
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT execution_id, artifact_id, type, path, milliseconds_since_epoch
		             FROM events WHERE execution_id IN (%s)`, placeholders),
		args...,
	)
	if err != nil {
		return nil, mderr.Internal("find events by executions: %v", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]mdentity.Event, error) {
	var out []mdentity.Event
	for rows.Next() {
		var e mdentity.Event
		var typ int
		var path sql.NullString
		if err := rows.Scan(&e.ExecutionID, &e.ArtifactID, &typ, &path, &e.MillisSinceEpoch); err != nil {
			return nil, mderr.Internal("scan event: %v", err)
		}
		e.HasExecutionID = true
		e.HasArtifactID = true
		e.Type = mdentity.EventType(typ)
		e.Path = path.String
		out = append(out, e)
	}
	return out, rows.Err()
}
