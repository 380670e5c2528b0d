// Package remap builds the origin→library mapping table and rewrites
// scene-graph parameters in place, forward for export and reverse for
// import. The mapping key is the raw token-bearing string for patterns and
// the resolved path for literals, and rewrites substitute only the
// non-token portion, so a forward+reverse pass is the identity transform.
package remap
