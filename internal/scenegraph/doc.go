// Package scenegraph defines the injectable scene-graph abstraction the
// packaging engine operates on: node enumeration, parameter get/set, and an
// opaque snapshot save/load primitive. An in-memory implementation with a
// JSON snapshot codec ships here; DCC hosts plug in their own.
package scenegraph
