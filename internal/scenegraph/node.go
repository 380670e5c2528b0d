package scenegraph

import "context"

// Parameter is one named value on a node. FilePath marks parameters whose
// declared type is a file path; RoleHint carries the material, channel, or
// geometry grouping used for library categorization.
type Parameter struct {
	Name     string
	Value    string
	FilePath bool
	RoleHint string
	Required bool
}

// NodeProvider is the engine's view of a scene graph. Implementations may
// wrap a live DCC object graph or an offline document; the engine never
// assumes anything beyond these operations.
type NodeProvider interface {
	// RootPath returns the structural address of the root node.
	RootPath() string
	// Children returns the structural addresses of a node's children.
	// Graphs may contain back-references; callers guard against cycles.
	Children(nodePath string) ([]string, error)
	// Parameters returns all parameters declared on a node.
	Parameters(nodePath string) ([]Parameter, error)
	// SetParameter overwrites one parameter value in place.
	SetParameter(nodePath, name, value string) error
}

// SnapshotCodec saves and loads the opaque scene snapshot that accompanies
// a packaged asset. The engine treats the on-disk format as out of scope.
type SnapshotCodec interface {
	Save(ctx context.Context, provider NodeProvider, path string) error
	Load(ctx context.Context, path string) (NodeProvider, error)
}
