// Package pattern classifies file references as literal, tile pattern, or
// frame-sequence pattern, and enumerates the concrete on-disk files behind
// each pattern. The mapping key for a pattern is always the raw,
// token-bearing string: rewriting a resolved instance instead would fix one
// tile or frame and silently break the rest.
package pattern
