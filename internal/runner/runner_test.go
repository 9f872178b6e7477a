package runner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExecRunnerCapturesStreams(t *testing.T) {
	stdout, stderr, exit, err := ExecRunner{}.Run("sh", "-c", "printf out; printf err >&2")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if string(stdout) != "out" {
		t.Fatalf("expected stdout %q, got %q", "out", stdout)
	}
	if string(stderr) != "err" {
		t.Fatalf("expected stderr %q, got %q", "err", stderr)
	}
}

func TestExecRunnerReportsExitCode(t *testing.T) {
	_, _, exit, err := ExecRunner{}.Run("sh", "-c", "exit 3")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if exit != 3 {
		t.Fatalf("expected exit 3, got %d", exit)
	}
}

func TestExecRunnerMissingCommandMapsTo127(t *testing.T) {
	_, _, exit, err := ExecRunner{}.Run("rigctl-no-such-binary")
	if err == nil {
		t.Fatal("expected error for missing command")
	}
	if exit != 127 {
		t.Fatalf("expected exit 127, got %d", exit)
	}
}

func TestExecRunnerRunEnvAppendsEnvironment(t *testing.T) {
	stdout, _, exit, err := ExecRunner{}.RunEnv(
		[]string{"RIGCTL_TEST_VALUE=wired"},
		"sh", "-c", `printf %s "$RIGCTL_TEST_VALUE"`,
	)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if string(stdout) != "wired" {
		t.Fatalf("expected stdout %q, got %q", "wired", stdout)
	}
}

func TestExecRunnerRunEnvKeepsInheritedEnvironment(t *testing.T) {
	t.Setenv("RIGCTL_TEST_INHERITED", "kept")

	stdout, _, _, err := ExecRunner{}.RunEnv(
		[]string{"RIGCTL_TEST_VALUE=wired"},
		"sh", "-c", `printf %s "$RIGCTL_TEST_INHERITED"`,
	)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if string(stdout) != "kept" {
		t.Fatalf("expected inherited env to survive, got %q", stdout)
	}
}

func TestExecRunnerWriteFileCreatesParents(t *testing.T) {
	target := filepath.Join(t.TempDir(), "keyrings", "sample.list")

	if err := (ExecRunner{}).WriteFile(target, []byte("deb example stable main\n"), 0o644); err != nil {
		t.Fatalf("expected write to succeed, got %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("expected file to exist, got %v", err)
	}
	if string(data) != "deb example stable main\n" {
		t.Fatalf("unexpected file contents %q", data)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("expected mode 0644, got %v", info.Mode().Perm())
	}
}

func TestExecRunnerWriteFileTruncatesExisting(t *testing.T) {
	target := filepath.Join(t.TempDir(), "sample.list")

	if err := (ExecRunner{}).WriteFile(target, []byte("first version with a long body\n"), 0o644); err != nil {
		t.Fatalf("expected write to succeed, got %v", err)
	}
	if err := (ExecRunner{}).WriteFile(target, []byte("second\n"), 0o644); err != nil {
		t.Fatalf("expected rewrite to succeed, got %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("expected file to exist, got %v", err)
	}
	if string(data) != "second\n" {
		t.Fatalf("expected truncated rewrite, got %q", data)
	}
}
