package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewRunStampsGeneratedAt(t *testing.T) {
	run := NewRun("local")
	if run.Target != "local" {
		t.Fatalf("unexpected target %q", run.Target)
	}
	if _, err := time.Parse(time.RFC3339, run.GeneratedAt); err != nil {
		t.Fatalf("generated_at not RFC3339: %v", err)
	}
	if run.CompletedAt != "" {
		t.Fatal("expected completed_at unset before Complete")
	}
}

func TestAddFoldsSummaryCounts(t *testing.T) {
	run := NewRun("local")
	run.Add(ToolOutcome{Tool: "wget", Outcome: OutcomePresent})
	run.Add(ToolOutcome{Tool: "git", Outcome: OutcomeInstalled})
	run.Add(ToolOutcome{Tool: "gh", Outcome: OutcomeFailed})
	run.Add(ToolOutcome{Tool: "rust", Outcome: OutcomeAborted})

	if run.Summary.Present != 1 || run.Summary.Installed != 1 || run.Summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", run.Summary)
	}
	if len(run.Tools) != 4 {
		t.Fatalf("expected 4 tool records, got %d", len(run.Tools))
	}
}

func TestWriteProducesReadableArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.json")

	run := NewRun("ssh ops@rig.example:22")
	run.Add(ToolOutcome{
		Tool:         "git",
		Name:         "Git",
		StatusBefore: "absent",
		StatusAfter:  "present",
		Version:      "git version 2.43.0",
		Steps:        1,
		DurationMS:   1250,
		Outcome:      OutcomeInstalled,
	})
	run.Complete()

	if err := run.Write(path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	var decoded Run
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("artifact not valid JSON: %v", err)
	}
	if decoded.Target != "ssh ops@rig.example:22" {
		t.Fatalf("unexpected target %q", decoded.Target)
	}
	if len(decoded.Tools) != 1 || decoded.Tools[0].Outcome != OutcomeInstalled {
		t.Fatalf("unexpected tools %+v", decoded.Tools)
	}
	if decoded.Summary.Installed != 1 {
		t.Fatalf("unexpected summary %+v", decoded.Summary)
	}
	if decoded.CompletedAt == "" {
		t.Fatal("expected completed_at to be stamped")
	}

	if strings.Contains(string(data), `"error"`) {
		t.Fatal("expected empty error field to be omitted")
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Fatal("expected trailing newline on artifact")
	}
}
