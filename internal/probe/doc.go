// Package probe owns tool presence detection.
//
// Ownership boundary:
// - probe result shape and presence status values
// - version-command execution and interpretation
// - best-effort executable path resolution
package probe
