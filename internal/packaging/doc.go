// Package packaging coordinates a full export pass: scan the scene graph,
// classify references, allocate an identity, materialize files into the
// library, rewrite the graph, and commit the manifest to the catalog. A
// failed pass rolls the library tree and the graph back to their state
// before the pass started. The package also drives the reverse direction,
// loading a packaged asset's snapshot and rebasing it onto another library
// root.
package packaging
