package scenegraph

import (
	"fmt"
	"sort"
)

// Graph is an in-memory NodeProvider used by tests and the CLI. Edges are
// explicit, so back-references (cycles) can be modeled.
type Graph struct {
	root  string
	nodes map[string]*graphNode
}

type graphNode struct {
	children []string
	params   []Parameter
}

// NewGraph constructs a graph containing only the root node.
func NewGraph(root string) *Graph {
	g := &Graph{root: root, nodes: map[string]*graphNode{}}
	g.nodes[root] = &graphNode{}
	return g
}

// AddNode registers a node address. Adding an existing node is a no-op.
func (g *Graph) AddNode(path string) {
	if _, ok := g.nodes[path]; !ok {
		g.nodes[path] = &graphNode{}
	}
}

// Connect records a parent→child edge. Both nodes are created as needed.
func (g *Graph) Connect(parent, child string) {
	g.AddNode(parent)
	g.AddNode(child)
	node := g.nodes[parent]
	for _, existing := range node.children {
		if existing == child {
			return
		}
	}
	node.children = append(node.children, child)
}

// AddParameter declares a parameter on a node, creating the node as needed.
// Re-declaring a parameter replaces its definition.
func (g *Graph) AddParameter(nodePath string, param Parameter) {
	g.AddNode(nodePath)
	node := g.nodes[nodePath]
	for i, existing := range node.params {
		if existing.Name == param.Name {
			node.params[i] = param
			return
		}
	}
	node.params = append(node.params, param)
}

// NodePaths returns every node address in deterministic order.
func (g *Graph) NodePaths() []string {
	paths := make([]string, 0, len(g.nodes))
	for path := range g.nodes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// RootPath implements NodeProvider.
func (g *Graph) RootPath() string { return g.root }

// Children implements NodeProvider.
func (g *Graph) Children(nodePath string) ([]string, error) {
	node, ok := g.nodes[nodePath]
	if !ok {
		return nil, fmt.Errorf("node %q not found", nodePath)
	}
	out := make([]string, len(node.children))
	copy(out, node.children)
	return out, nil
}

// Parameters implements NodeProvider.
func (g *Graph) Parameters(nodePath string) ([]Parameter, error) {
	node, ok := g.nodes[nodePath]
	if !ok {
		return nil, fmt.Errorf("node %q not found", nodePath)
	}
	out := make([]Parameter, len(node.params))
	copy(out, node.params)
	return out, nil
}

// Parameter returns one parameter value, with ok=false when undeclared.
func (g *Graph) Parameter(nodePath, name string) (string, bool) {
	node, ok := g.nodes[nodePath]
	if !ok {
		return "", false
	}
	for _, param := range node.params {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// SetParameter implements NodeProvider.
func (g *Graph) SetParameter(nodePath, name, value string) error {
	node, ok := g.nodes[nodePath]
	if !ok {
		return fmt.Errorf("node %q not found", nodePath)
	}
	for i, param := range node.params {
		if param.Name == name {
			node.params[i].Value = value
			return nil
		}
	}
	return fmt.Errorf("parameter %q not found on node %q", name, nodePath)
}
