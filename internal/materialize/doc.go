// Package materialize copies the concrete files behind classified
// references into the categorized library tree: textures grouped per
// material or channel, geometry per format family. Copies are
// content-checked so repeated exports are idempotent, and a failed
// reference never leaves its own files half-written.
package materialize
