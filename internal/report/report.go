package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Per-tool outcome values.
const (
	OutcomePresent   = "present"
	OutcomeInstalled = "installed"
	OutcomeFailed    = "failed"
	OutcomeAborted   = "aborted"
)

// ToolOutcome is one tool's custody record across a run.
type ToolOutcome struct {
	Tool         string `json:"tool"`
	Name         string `json:"name"`
	StatusBefore string `json:"status_before"`
	StatusAfter  string `json:"status_after"`
	Version      string `json:"version,omitempty"`
	Path         string `json:"path,omitempty"`
	Steps        int    `json:"steps"`
	DurationMS   int64  `json:"duration_ms"`
	Outcome      string `json:"outcome"`
	Error        string `json:"error,omitempty"`
}

// Summary carries the run-level counts.
type Summary struct {
	Present   int `json:"present"`
	Installed int `json:"installed"`
	Failed    int `json:"failed"`
}

// Run is the per-run outcome document. It is assembled in memory and
// discarded at exit unless a report path is configured.
type Run struct {
	GeneratedAt string        `json:"generated_at"`
	CompletedAt string        `json:"completed_at,omitempty"`
	Target      string        `json:"target"`
	Tools       []ToolOutcome `json:"tools"`
	Summary     Summary       `json:"summary"`
}

// NewRun starts a run record for the given target description.
func NewRun(target string) *Run {
	return &Run{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Target:      target,
		Tools:       make([]ToolOutcome, 0),
	}
}

// Add appends a tool outcome and folds it into the summary counts.
func (r *Run) Add(outcome ToolOutcome) {
	r.Tools = append(r.Tools, outcome)
	switch outcome.Outcome {
	case OutcomePresent:
		r.Summary.Present++
	case OutcomeInstalled:
		r.Summary.Installed++
	case OutcomeFailed:
		r.Summary.Failed++
	}
}

// Complete stamps the end of the run.
func (r *Run) Complete() {
	r.CompletedAt = time.Now().UTC().Format(time.RFC3339)
}

// Write marshals the record to an indented JSON artifact, creating parent
// directories as needed.
func (r *Run) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	return nil
}
