// Command assetpack packages scene-graph assets into a canonical library
// tree and back: export scans a scene snapshot, copies its file references
// into the library, and rewrites the snapshot to point there; import loads
// a packaged asset and rebases it onto another library root. The catalog
// subcommands inspect the committed library index.
package main
