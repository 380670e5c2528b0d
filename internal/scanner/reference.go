package scanner

import (
	"path/filepath"
	"strings"
)

// PatternKind classifies how a reference addresses files on disk.
type PatternKind string

const (
	// PatternUnknown marks a reference that has not been classified yet.
	PatternUnknown PatternKind = "unknown"
	// PatternLiteral addresses exactly one file.
	PatternLiteral PatternKind = "literal"
	// PatternTile addresses one file per 2D tile via a tile token.
	PatternTile PatternKind = "tile_pattern"
	// PatternSequence addresses one file per frame via a frame token.
	PatternSequence PatternKind = "sequence_pattern"
)

// Category is the library grouping a reference files under.
type Category string

const (
	CategoryTexture  Category = "textures"
	CategoryGeometry Category = "geometry"
)

// Reference is one file-bearing parameter found on one node. RawValue keeps
// the unevaluated string (pattern tokens intact); ResolvedValue is the
// best-effort expanded form used only for literal references.
type Reference struct {
	NodePath      string
	Parameter     string
	RawValue      string
	ResolvedValue string
	Kind          PatternKind
	RoleHint      string
	Required      bool

	// Files holds the concrete files enumerated by the classifier:
	// exactly one for literals, one per tile or frame for patterns.
	Files []string
}

// Category reports whether the reference belongs to the texture or
// geometry side of the library tree, decided by extension family.
func (r Reference) Category() Category {
	if isGeometryPath(r.RawValue) {
		return CategoryGeometry
	}
	return CategoryTexture
}

// Role returns the folder grouping for the reference: the role hint when
// declared, otherwise a family derived from the file extension.
func (r Reference) Role() string {
	if hint := strings.TrimSpace(r.RoleHint); hint != "" {
		return hint
	}
	if r.Category() == CategoryGeometry {
		return geometryFamily(r.RawValue)
	}
	return "default"
}

var textureExtensions = map[string]struct{}{
	".bmp": {}, ".exr": {}, ".hdr": {}, ".jpeg": {}, ".jpg": {},
	".pic": {}, ".png": {}, ".rat": {}, ".tex": {}, ".tga": {},
	".tif": {}, ".tiff": {}, ".tx": {},
}

var geometryExtensions = map[string]string{
	".abc":  "alembic",
	".bgeo": "bgeo",
	".fbx":  "fbx",
	".obj":  "obj",
	".ply":  "ply",
	".sc":   "bgeo",
	".usd":  "usd",
	".usda": "usd",
	".usdc": "usd",
	".vdb":  "vdb",
}

func knownExtension(value string) bool {
	ext := strings.ToLower(filepath.Ext(stripTokens(value)))
	if _, ok := textureExtensions[ext]; ok {
		return true
	}
	_, ok := geometryExtensions[ext]
	return ok
}

func isGeometryPath(value string) bool {
	_, ok := geometryExtensions[strings.ToLower(filepath.Ext(stripTokens(value)))]
	return ok
}

func geometryFamily(value string) string {
	if family, ok := geometryExtensions[strings.ToLower(filepath.Ext(stripTokens(value)))]; ok {
		return family
	}
	return "other"
}

// stripTokens removes trailing pattern tokens so filepath.Ext sees the real
// extension in values like "cache.$F4.bgeo.sc" or "tex.<UDIM>.png".
func stripTokens(value string) string {
	return strings.NewReplacer("<UDIM>", "", "<udim>", "").Replace(value)
}

// LooksLikeFilePath is the heuristic for undeclared parameters: a path
// separator plus a known texture or geometry extension.
func LooksLikeFilePath(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || !strings.ContainsRune(value, '/') {
		return false
	}
	return knownExtension(value)
}
