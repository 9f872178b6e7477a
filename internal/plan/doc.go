// Package plan owns the per-run installation plan.
//
// Ownership boundary:
// - probe-derived plan entries, built once and never mutated
// - the missing-tool views, including the dependency-ordered install walk
// - cycle and unknown-dependency detection
package plan
