// Package systemtype maps well-known base-type names to a fixed enum, the
// way ml_metadata's SystemTypeExtension does for the handful of built-in
// base types (DATASET, MODEL, METRICS, STATISTICS, ...).
package systemtype

// Extension is a fixed, closed enum of well-known base types. Base-type
// hydration in internal/typesys does not consult it: a hydrated type's
// BaseType carries the parent's type name as stored, not an Extension.
type Extension int

const (
	Unknown Extension = iota
	Dataset
	Model
	Metrics
	Statistics
	Checkpoint
	Component
)

var byName = map[string]Extension{
	"Dataset":    Dataset,
	"Model":      Model,
	"Metrics":    Metrics,
	"Statistics": Statistics,
	"Checkpoint": Checkpoint,
	"Component":  Component,
}

var names = map[Extension]string{
	Dataset:    "Dataset",
	Model:      "Model",
	Metrics:    "Metrics",
	Statistics: "Statistics",
	Checkpoint: "Checkpoint",
	Component:  "Component",
}

// FromName translates a type name into its Extension enum. Names outside
// the built-in set (matched exactly, case included) map to Unknown.
func FromName(name string) Extension {
	if ext, ok := byName[name]; ok {
		return ext
	}
	return Unknown
}

// Name returns the canonical type name for an Extension, or "" for Unknown.
func (e Extension) Name() string { return names[e] }

func (e Extension) String() string {
	if n, ok := names[e]; ok {
		return n
	}
	return "UNKNOWN"
}
