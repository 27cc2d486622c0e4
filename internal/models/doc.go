// Package models provides the model collaborators used by the CLI and
// tests: a planar serial chain (continuous state) and a register bank
// (opaque discrete state). Both implement host.Model for every supported
// scalar kind, so the same linkage can be evaluated with plain values or
// differentiated with dual numbers.
package models
