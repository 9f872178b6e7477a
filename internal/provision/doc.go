// Package provision owns install execution and run orchestration.
//
// Ownership boundary:
// - recipe step execution against the target runner
// - post-install verification probing
// - the sequential run driver: fast path, platform guard, ordered installs
package provision
