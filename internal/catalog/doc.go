// Package catalog is the SQLite-backed library index. It records every
// committed asset identity and manifest, backs the allocator's uniqueness
// and version lookups, and serves catalog listings. The engine only ever
// writes at commit time; external systems are free to mirror the manifest
// into their own search stores.
package catalog
