package packaging

import (
	"assetpack/internal/identity"
	"assetpack/internal/manifest"
)

// Phase names the stage an export pass is in. Phases advance strictly
// forward; a pass that fails records the phase it failed in.
type Phase string

const (
	PhaseScanning      Phase = "scanning"
	PhaseClassifying   Phase = "classifying"
	PhaseAllocating    Phase = "allocating"
	PhaseMaterializing Phase = "materializing"
	PhaseRemapping     Phase = "remapping"
	PhaseComposing     Phase = "composing"
	PhaseCommitted     Phase = "committed"
	PhaseFailed        Phase = "failed"
)

// Status summarizes the outcome of an export pass.
type Status string

const (
	StatusSucceeded             Status = "succeeded"
	StatusSucceededWithWarnings Status = "succeeded_with_warnings"
	StatusFailed                Status = "failed"
)

// Result reports everything a caller needs to know about one export pass.
type Result struct {
	Status   Status
	Phase    Phase
	Identity identity.AssetIdentity
	Manifest *manifest.Manifest
	AssetDir string
	Warnings []string

	// RolledBack is set when a failure occurred after the pass had started
	// mutating the library or the graph and those mutations were undone.
	RolledBack bool
}

// HasWarnings reports whether any phase surfaced advisory findings.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
