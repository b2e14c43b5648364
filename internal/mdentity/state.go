package mdentity

// ArtifactState mirrors the original's Artifact.State enum.
type ArtifactState int

const (
	ArtifactUnknown ArtifactState = iota
	ArtifactPending
	ArtifactLive
	ArtifactMarkedForDeletion
	ArtifactDeleted
)

// ExecutionState mirrors the original's Execution.LastKnownState enum.
type ExecutionState int

const (
	ExecutionUnknown ExecutionState = iota
	ExecutionNew
	ExecutionRunning
	ExecutionComplete
	ExecutionFailed
	ExecutionCached
	ExecutionCanceled
)

// EventType mirrors the original's Event.Type enum (a subset relevant to
// event-to-artifact linking: inputs feed an execution, outputs are produced
// by it).
type EventType int

const (
	EventUnknown EventType = iota
	EventDeclaredInput
	EventInput
	EventDeclaredOutput
	EventOutput
	EventInternalInput
	EventInternalOutput
)
