package scenegraph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// JSONSnapshot is the built-in snapshot codec for in-memory graphs. It is
// the stand-in for a DCC-native save/load in tests and CLI workflows.
type JSONSnapshot struct{}

type snapshotDoc struct {
	Root  string                  `json:"root"`
	Nodes map[string]snapshotNode `json:"nodes"`
}

type snapshotNode struct {
	Children   []string            `json:"children,omitempty"`
	Parameters []snapshotParameter `json:"parameters,omitempty"`
}

type snapshotParameter struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	FilePath bool   `json:"file_path,omitempty"`
	RoleHint string `json:"role_hint,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// Save implements SnapshotCodec for *Graph providers.
func (JSONSnapshot) Save(ctx context.Context, provider NodeProvider, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	graph, ok := provider.(*Graph)
	if !ok {
		return fmt.Errorf("json snapshot requires an in-memory graph, got %T", provider)
	}

	doc := snapshotDoc{Root: graph.RootPath(), Nodes: map[string]snapshotNode{}}
	for _, nodePath := range graph.NodePaths() {
		children, err := graph.Children(nodePath)
		if err != nil {
			return err
		}
		params, err := graph.Parameters(nodePath)
		if err != nil {
			return err
		}
		node := snapshotNode{Children: children}
		for _, param := range params {
			node.Parameters = append(node.Parameters, snapshotParameter(param))
		}
		doc.Nodes[nodePath] = node
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load implements SnapshotCodec.
func (JSONSnapshot) Load(ctx context.Context, path string) (NodeProvider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.Root == "" {
		return nil, fmt.Errorf("snapshot %s has no root node", path)
	}

	graph := NewGraph(doc.Root)
	nodePaths := make([]string, 0, len(doc.Nodes))
	for nodePath := range doc.Nodes {
		nodePaths = append(nodePaths, nodePath)
	}
	sort.Strings(nodePaths)
	for _, nodePath := range nodePaths {
		node := doc.Nodes[nodePath]
		graph.AddNode(nodePath)
		for _, child := range node.Children {
			graph.Connect(nodePath, child)
		}
		for _, param := range node.Parameters {
			graph.AddParameter(nodePath, Parameter(param))
		}
	}
	return graph, nil
}
