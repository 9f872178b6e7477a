// Package report owns the per-run outcome record.
//
// Ownership boundary:
// - per-tool custody fields (status before/after, steps, duration, outcome)
// - run summary counts
// - opt-in JSON artifact writing
package report
