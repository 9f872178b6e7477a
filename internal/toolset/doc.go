// Package toolset owns the managed tool catalog.
//
// Ownership boundary:
// - tool spec and recipe step shapes
// - validating, order-preserving spec registry
// - the built-in workstation catalog
package toolset
