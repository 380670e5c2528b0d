// Package identity mints and parses stable asset identities. An identity is
// a 14-character key composed of a 9-character base UID, a two-letter
// variant code (AA..ZZ), and a three-digit version. The base UID never
// changes for a conceptual asset; variants branch it and versions iterate
// within a variant.
package identity
