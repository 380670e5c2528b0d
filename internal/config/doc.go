// Package config loads, normalizes, and validates the assetpack TOML
// configuration: library root and taxonomy, materializer limits, catalog
// location, and logging options.
package config
