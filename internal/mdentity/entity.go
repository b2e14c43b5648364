// Package mdentity holds the Artifact/Execution/Context/Event/Association/
// Attribution/ParentContext/ParentType shapes the store reads and writes.
package mdentity

import "github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"

// Artifact is a data object produced/consumed by an execution.
type Artifact struct {
	ID                        int64
	TypeID                    int64
	URI                       string
	HasURI                    bool
	Name                      string
	HasName                   bool
	Properties                map[string]mdtype.Value
	CustomProperties          map[string]mdtype.Value
	State                     ArtifactState
	CreateTimeSinceEpoch      int64
	LastUpdateTimeSinceEpoch  int64
}

func (a Artifact) HasID() bool { return a.ID != 0 }

// Execution is a run of a pipeline step.
type Execution struct {
	ID                       int64
	TypeID                   int64
	Name                     string
	HasName                  bool
	Properties               map[string]mdtype.Value
	CustomProperties         map[string]mdtype.Value
	State                    ExecutionState
	CreateTimeSinceEpoch     int64
	LastUpdateTimeSinceEpoch int64
}

func (e Execution) HasID() bool { return e.ID != 0 }

// Context is a grouping (experiment, run, project) of artifacts/executions.
type Context struct {
	ID                       int64
	TypeID                   int64
	Name                     string
	Properties               map[string]mdtype.Value
	CustomProperties         map[string]mdtype.Value
	CreateTimeSinceEpoch     int64
	LastUpdateTimeSinceEpoch int64
}

func (c Context) HasID() bool { return c.ID != 0 }

// Event is a directed link from an execution to an artifact.
type Event struct {
	ExecutionID       int64
	HasExecutionID    bool
	ArtifactID        int64
	HasArtifactID     bool
	Type              EventType
	Path              string
	MillisSinceEpoch  int64
}

// Association is a membership link between a context and an execution.
type Association struct {
	ID          int64
	ContextID   int64
	ExecutionID int64
}

// Attribution is a membership link between a context and an artifact.
type Attribution struct {
	ID         int64
	ContextID  int64
	ArtifactID int64
}

// ParentContext is a directed edge between a parent and child context.
type ParentContext struct {
	ParentContextID int64
	ChildContextID  int64
}

// ParentType is the single-parent inheritance link between a child type id
// and a parent type id.
type ParentType struct {
	TypeID       int64
	ParentTypeID int64
}
