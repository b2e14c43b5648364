package sqlmao

import (
	"context"
	"fmt"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
)

func (d *DB) CreateAssociation(ctx context.Context, a mdentity.Association) (int64, error) {
	res, err := d.tx(ctx).ExecContext(ctx,
		`INSERT INTO associations (context_id, execution_id) VALUES (?, ?)`,
		a.ContextID, a.ExecutionID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, mderr.AlreadyExists("association context_id=%d execution_id=%d already exists", a.ContextID, a.ExecutionID)
		}
		if isForeignKeyViolation(err) {
			return 0, mderr.NotFound("association context_id=%d or execution_id=%d not found", a.ContextID, a.ExecutionID)
		}
		return 0, mderr.Internal("create association: %v", err)
	}
	return res.LastInsertId()
}

func (d *DB) CreateAttribution(ctx context.Context, a mdentity.Attribution) (int64, error) {
	res, err := d.tx(ctx).ExecContext(ctx,
		`INSERT INTO attributions (context_id, artifact_id) VALUES (?, ?)`,
		a.ContextID, a.ArtifactID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, mderr.AlreadyExists("attribution context_id=%d artifact_id=%d already exists", a.ContextID, a.ArtifactID)
		}
		if isForeignKeyViolation(err) {
			return 0, mderr.NotFound("attribution context_id=%d or artifact_id=%d not found", a.ContextID, a.ArtifactID)
		}
		return 0, mderr.Internal("create attribution: %v", err)
	}
	return res.LastInsertId()
}

func (d *DB) FindContextsByArtifact(ctx context.Context, artifactID int64) ([]mdentity.Context, error) {
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM contexts c
		             JOIN attributions at ON at.context_id = c.id
		             WHERE at.artifact_id = ? ORDER BY c.id`, qualify("c", contextColumns)),
		artifactID,
	)
	if err != nil {
		return nil, mderr.Internal("find contexts by artifact: %v", err)
	}
	defer rows.Close()
	return scanContexts(rows)
}

func (d *DB) FindContextsByExecution(ctx context.Context, executionID int64) ([]mdentity.Context, error) {
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM contexts c
		             JOIN associations assoc ON assoc.context_id = c.id
		             WHERE assoc.execution_id = ? ORDER BY c.id`, qualify("c", contextColumns)),
		executionID,
	)
	if err != nil {
		return nil, mderr.Internal("find contexts by execution: %v", err)
	}
	defer rows.Close()
	return scanContexts(rows)
}

func (d *DB) FindArtifactsByContext(ctx context.Context, contextID int64, opts *mao.ListOptions) (mao.ListResult[mdentity.Artifact], error) {
	suffix, pageArgs, _, limit, err := pageClause(opts)
	if err != nil {
		return mao.ListResult[mdentity.Artifact]{}, err
	}
	args := append([]any{contextID}, pageArgs...)
	query := fmt.Sprintf(`SELECT %s FROM artifacts a
	                       JOIN attributions at ON at.artifact_id = a.id
	                       WHERE at.context_id = ? %s`, qualify("a", artifactColumns), suffix)
	rows, err := d.tx(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return mao.ListResult[mdentity.Artifact]{}, mderr.Internal("find artifacts by context: %v", err)
	}
	defer rows.Close()
	items, err := scanArtifacts(rows)
	if err != nil {
		return mao.ListResult[mdentity.Artifact]{}, err
	}
	return paginateArtifacts(items, limit, opts)
}

func (d *DB) FindExecutionsByContext(ctx context.Context, contextID int64, opts *mao.ListOptions) (mao.ListResult[mdentity.Execution], error) {
	suffix, pageArgs, _, limit, err := pageClause(opts)
	if err != nil {
		return mao.ListResult[mdentity.Execution]{}, err
	}
	args := append([]any{contextID}, pageArgs...)
	query := fmt.Sprintf(`SELECT %s FROM executions e
	                       JOIN associations assoc ON assoc.execution_id = e.id
	                       WHERE assoc.context_id = ? %s`, qualify("e", executionColumns), suffix)
	rows, err := d.tx(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return mao.ListResult[mdentity.Execution]{}, mderr.Internal("find executions by context: %v", err)
	}
	defer rows.Close()
	items, err := scanExecutions(rows)
	if err != nil {
		return mao.ListResult[mdentity.Execution]{}, err
	}
	return paginateExecutions(items, limit, opts)
}

func (d *DB) CreateParentContext(ctx context.Context, pc mdentity.ParentContext) error {
	_, err := d.tx(ctx).ExecContext(ctx,
		`INSERT INTO parent_contexts (parent_context_id, child_context_id) VALUES (?, ?)`,
		pc.ParentContextID, pc.ChildContextID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return mderr.AlreadyExists("parent context %d -> %d already exists", pc.ParentContextID, pc.ChildContextID)
		}
		if isForeignKeyViolation(err) {
			return mderr.NotFound("parent context %d or child context %d not found", pc.ParentContextID, pc.ChildContextID)
		}
		return mderr.Internal("create parent context: %v", err)
	}
	return nil
}

func (d *DB) FindParentContextsByContext(ctx context.Context, contextID int64) ([]mdentity.Context, error) {
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM contexts c
		             JOIN parent_contexts pc ON pc.parent_context_id = c.id
		             WHERE pc.child_context_id = ? ORDER BY c.id`, qualify("c", contextColumns)),
		contextID,
	)
	if err != nil {
		return nil, mderr.Internal("find parent contexts: %v", err)
	}
	defer rows.Close()
	return scanContexts(rows)
}

func (d *DB) FindChildrenContextsByContext(ctx context.Context, contextID int64) ([]mdentity.Context, error) {
	rows, err := d.tx(ctx).QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM contexts c
		             JOIN parent_contexts pc ON pc.child_context_id = c.id
		             WHERE pc.parent_context_id = ? ORDER BY c.id`, qualify("c", contextColumns)),
		contextID,
	)
	if err != nil {
		return nil, mderr.Internal("find children contexts: %v", err)
	}
	defer rows.Close()
	return scanContexts(rows)
}

// qualify prefixes every comma-separated column in cols with alias, since
// the *Columns constants are written unqualified for the single-table
// lookups but several link queries join against another table also named
// "id", "type_id", etc.
func qualify(alias, cols string) string {
	parts := splitColumns(cols)
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return joinComma(parts)
}
