package materialize

import (
	"path/filepath"
	"strings"

	"assetpack/internal/scanner"
)

const (
	// TexturesDir is the library subtree for texture references.
	TexturesDir = "Textures"
	// GeometryDir is the library subtree for geometry references.
	GeometryDir = "Geometry"
)

// RelativeDir returns the destination directory for a reference, relative
// to the asset's library folder.
func RelativeDir(ref scanner.Reference) string {
	group := sanitizeSegment(ref.Role())
	if ref.Category() == scanner.CategoryGeometry {
		return filepath.Join(GeometryDir, group)
	}
	return filepath.Join(TexturesDir, group)
}

// LibraryRelativePath returns the library-relative path a reference is
// rewritten to. Filenames are preserved, and for patterns the token-bearing
// basename is kept verbatim so the rewritten value still addresses every
// tile or frame.
func LibraryRelativePath(ref scanner.Reference) string {
	base := filepath.Base(ref.ResolvedValue)
	if ref.Kind == scanner.PatternTile || ref.Kind == scanner.PatternSequence {
		base = filepath.Base(ref.RawValue)
	}
	return filepath.Join(RelativeDir(ref), base)
}

// sanitizeSegment makes a role hint safe to use as a single folder name.
func sanitizeSegment(segment string) string {
	var builder strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			builder.WriteRune(r)
		case r == ' ' || r == '.':
			builder.WriteRune('_')
		}
	}
	if builder.Len() == 0 {
		return "default"
	}
	return builder.String()
}
