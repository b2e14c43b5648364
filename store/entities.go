package store

import (
	"context"
	"time"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/clockutil"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/entity"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/txn"
)

// PutArtifacts upserts each artifact in order, inside one transaction. When
// abortIfLatestUpdatedTimeChanged is true, every artifact that already has
// an id is checked against the store's current last_update_time_since_epoch
// for that row before being written: a mismatch means someone else updated
// it since the caller last read it, and the whole call aborts rather than
// clobber that write. On a match, the call sleeps until the clock has
// advanced at least one millisecond past the stored value, so the new
// last_update_time_since_epoch this write stamps is guaranteed strictly
// greater — list-by-update-time order stays well defined even under a
// clock with millisecond resolution.
func (s *Store) PutArtifacts(ctx context.Context, artifacts []mdentity.Artifact, abortIfLatestUpdatedTimeChanged bool) ([]int64, error) {
	var ids []int64
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		ids = make([]int64, 0, len(artifacts))
		for _, a := range artifacts {
			if abortIfLatestUpdatedTimeChanged && a.HasID() {
				current, err := s.mao.FindArtifactsByID(ctx, []int64{a.ID})
				if err != nil {
					return err
				}
				if len(current) == 0 {
					return mderr.NotFound("artifact id=%d not found", a.ID)
				}
				if current[0].LastUpdateTimeSinceEpoch != a.LastUpdateTimeSinceEpoch {
					return mderr.FailedPrecondition(
						"artifact id=%d was updated concurrently; abort_if_latest_updated_time_changed requested", a.ID)
				}
				for clockutil.MillisSinceEpoch(s.clock.Now()) <= current[0].LastUpdateTimeSinceEpoch {
					s.clock.Sleep(time.Millisecond)
				}
			}
			id, err := entity.UpsertArtifact(ctx, s.mao, a)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

func (s *Store) PutExecutions(ctx context.Context, executions []mdentity.Execution) ([]int64, error) {
	var ids []int64
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		ids = make([]int64, 0, len(executions))
		for _, e := range executions {
			id, err := entity.UpsertExecution(ctx, s.mao, e)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

func (s *Store) PutContexts(ctx context.Context, contexts []mdentity.Context) ([]int64, error) {
	var ids []int64
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		ids = make([]int64, 0, len(contexts))
		for _, c := range contexts {
			id, err := entity.UpsertContext(ctx, s.mao, c)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

func (s *Store) GetArtifactsByID(ctx context.Context, ids []int64) ([]mdentity.Artifact, error) {
	var out []mdentity.Artifact
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindArtifactsByID(ctx, ids)
		return err
	})
	return out, err
}

func (s *Store) GetExecutionsByID(ctx context.Context, ids []int64) ([]mdentity.Execution, error) {
	var out []mdentity.Execution
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindExecutionsByID(ctx, ids)
		return err
	})
	return out, err
}

func (s *Store) GetContextsByID(ctx context.Context, ids []int64) ([]mdentity.Context, error) {
	var out []mdentity.Context
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		out, err = s.mao.FindContextsByID(ctx, ids)
		return err
	})
	return out, err
}

// GetArtifactsByURIRequest carries the deprecated singular uri field
// alongside the current repeated uris field, so the deprecated-field
// conflict check matches the original's behavior of refusing to guess
// intent when a caller sets both.
type GetArtifactsByURIRequest struct {
	URI    string
	HasURI bool // deprecated
	URIs   []string
}

func (s *Store) GetArtifactsByURI(ctx context.Context, req GetArtifactsByURIRequest) ([]mdentity.Artifact, error) {
	if req.HasURI && len(req.URIs) > 0 {
		return nil, mderr.InvalidArgument("cannot set both the deprecated uri field and uris")
	}
	uris := req.URIs
	if req.HasURI {
		uris = []string{req.URI}
	}
	var out []mdentity.Artifact
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		for _, u := range uris {
			found, err := s.mao.FindArtifactsByURI(ctx, u)
			if err != nil {
				return err
			}
			out = append(out, found...)
		}
		return nil
	})
	return out, err
}

func (s *Store) GetArtifactByTypeAndName(ctx context.Context, typeID int64, name string) (mdentity.Artifact, error) {
	var a mdentity.Artifact
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		a, err = s.mao.FindArtifactByTypeIDAndName(ctx, typeID, name)
		return err
	})
	return a, err
}

func (s *Store) GetExecutionByTypeAndName(ctx context.Context, typeID int64, name string) (mdentity.Execution, error) {
	var e mdentity.Execution
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		e, err = s.mao.FindExecutionByTypeIDAndName(ctx, typeID, name)
		return err
	})
	return e, err
}

func (s *Store) GetContextByTypeAndName(ctx context.Context, typeID int64, name string) (mdentity.Context, error) {
	var c mdentity.Context
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		c, err = s.mao.FindContextByTypeIDAndName(ctx, typeID, name)
		return err
	})
	return c, err
}

func (s *Store) GetArtifacts(ctx context.Context, filter mao.ArtifactFilter, opts *mao.ListOptions) (mao.ListResult[mdentity.Artifact], error) {
	var res mao.ListResult[mdentity.Artifact]
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		res, err = s.mao.ListArtifacts(ctx, filter, opts)
		return err
	})
	return res, err
}

func (s *Store) GetExecutions(ctx context.Context, typeID int64, hasType bool, opts *mao.ListOptions) (mao.ListResult[mdentity.Execution], error) {
	var res mao.ListResult[mdentity.Execution]
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		res, err = s.mao.ListExecutions(ctx, typeID, hasType, opts)
		return err
	})
	return res, err
}

func (s *Store) GetContexts(ctx context.Context, typeID int64, hasType bool, opts *mao.ListOptions) (mao.ListResult[mdentity.Context], error) {
	var res mao.ListResult[mdentity.Context]
	err := s.exec.Execute(ctx, txn.Options{}, func(ctx context.Context) error {
		var err error
		res, err = s.mao.ListContexts(ctx, typeID, hasType, opts)
		return err
	})
	return res, err
}
