// Package runner owns command execution against the provisioning target.
//
// Ownership boundary:
// - command execution boundary shared by probes and recipes
// - local host execution
// - remote execution over SSH
package runner
