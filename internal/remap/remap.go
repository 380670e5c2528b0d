package remap

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"assetpack/internal/logging"
	"assetpack/internal/materialize"
	"assetpack/internal/scanner"
	"assetpack/internal/scenegraph"
)

// Direction selects the rewrite orientation.
type Direction int

const (
	// Forward rewrites origin paths to library paths (export).
	Forward Direction = iota
	// Reverse rewrites library paths back to origin paths (import).
	Reverse
)

// Mapping relates one origin key to its library-relative path.
type Mapping struct {
	OriginKey           string
	LibraryRelativePath string
	IsPattern           bool
}

// Warning records a reference left untouched because no mapping matched it.
// Non-fatal: some parameters intentionally reference shared, un-packaged
// resources.
type Warning struct {
	NodePath  string
	Parameter string
	Value     string
}

// OriginKey returns the mapping key for a reference: the raw token-bearing
// string for patterns, the resolved path for literals.
func OriginKey(ref scanner.Reference) string {
	if ref.Kind == scanner.PatternTile || ref.Kind == scanner.PatternSequence {
		return ref.RawValue
	}
	return ref.ResolvedValue
}

// BuildMappings produces one mapping per distinct origin key. References
// with no enumerated files are skipped; there is nothing in the library for
// them to map to.
func BuildMappings(refs []scanner.Reference) []Mapping {
	seen := map[string]struct{}{}
	mappings := make([]Mapping, 0, len(refs))
	for _, ref := range refs {
		if len(ref.Files) == 0 {
			continue
		}
		key := OriginKey(ref)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		mappings = append(mappings, Mapping{
			OriginKey:           key,
			LibraryRelativePath: materialize.LibraryRelativePath(ref),
			IsPattern:           ref.Kind == scanner.PatternTile || ref.Kind == scanner.PatternSequence,
		})
	}
	return mappings
}

// Remapper rewrites node parameters according to a mapping table.
type Remapper struct {
	logger *slog.Logger
}

// New constructs a remapper.
func New(logger *slog.Logger) *Remapper {
	return &Remapper{logger: logging.WithComponent(logger, "remapper")}
}

type edit struct {
	nodePath  string
	parameter string
	oldValue  string
	newValue  string
}

// Apply rewrites every matching reference exactly once. The rewrite is
// atomic at the asset granularity: all planned parameter writes succeed or
// every already-applied write is restored before the error returns.
func (r *Remapper) Apply(provider scenegraph.NodeProvider, refs []scanner.Reference, mappings []Mapping, libraryRoot string, direction Direction) ([]Warning, error) {
	lookup := make(map[string]Mapping, len(mappings))
	for _, mapping := range mappings {
		switch direction {
		case Forward:
			lookup[mapping.OriginKey] = mapping
		case Reverse:
			lookup[filepath.Join(libraryRoot, mapping.LibraryRelativePath)] = mapping
		}
	}

	var (
		edits    []edit
		warnings []Warning
	)
	applied := map[string]struct{}{}
	for _, ref := range refs {
		slot := ref.NodePath + "\x00" + ref.Parameter
		if _, done := applied[slot]; done {
			continue
		}

		var key string
		if direction == Forward {
			key = OriginKey(ref)
		} else {
			key = ref.RawValue
		}
		mapping, ok := lookup[key]
		if !ok {
			r.logger.Warn("reference has no mapping entry",
				logging.String(logging.FieldNodePath, ref.NodePath),
				logging.String(logging.FieldParameter, ref.Parameter),
				logging.String("value", key))
			warnings = append(warnings, Warning{NodePath: ref.NodePath, Parameter: ref.Parameter, Value: key})
			continue
		}
		applied[slot] = struct{}{}

		var newValue string
		if direction == Forward {
			newValue = filepath.Join(libraryRoot, mapping.LibraryRelativePath)
		} else {
			newValue = mapping.OriginKey
		}
		edits = append(edits, edit{
			nodePath:  ref.NodePath,
			parameter: ref.Parameter,
			oldValue:  ref.RawValue,
			newValue:  newValue,
		})
	}

	for i, planned := range edits {
		if err := provider.SetParameter(planned.nodePath, planned.parameter, planned.newValue); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = provider.SetParameter(edits[j].nodePath, edits[j].parameter, edits[j].oldValue)
			}
			return nil, fmt.Errorf("rewrite %s.%s: %w", planned.nodePath, planned.parameter, err)
		}
	}

	r.logger.Info("remap applied",
		logging.Int("rewritten", len(edits)),
		logging.Int("unmapped", len(warnings)),
		logging.Bool("forward", direction == Forward))
	return warnings, nil
}
