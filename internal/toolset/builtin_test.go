package toolset

import (
	"strings"
	"testing"
)

func TestBuiltinCatalogRegisters(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("expected catalog to register, got %v", err)
	}
	if reg.Len() != 8 {
		t.Fatalf("expected 8 catalog entries, got %d", reg.Len())
	}
	if err := reg.ValidateDependencies(); err != nil {
		t.Fatalf("expected dependency edges to resolve, got %v", err)
	}
}

func TestBuiltinCatalogOrder(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}

	want := []string{"wget", "git", "ripgrep", "gh", "rust", "bob", "yazi", "nvim"}
	for i, spec := range reg.List() {
		if spec.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], spec.ID)
		}
	}
}

func TestBuiltinAptStepsStayNonInteractive(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}

	for _, spec := range reg.List() {
		for _, step := range spec.Recipe {
			if step.Kind != StepRun || len(step.Argv) == 0 || step.Argv[0] != "apt-get" {
				continue
			}
			found := false
			for _, kv := range step.Env {
				if kv == "DEBIAN_FRONTEND=noninteractive" {
					found = true
				}
			}
			if !found {
				t.Fatalf("%s step %q misses noninteractive env", spec.ID, step.Name)
			}
			joined := strings.Join(step.Argv, " ")
			if !strings.Contains(joined, "--assume-yes") {
				t.Fatalf("%s step %q misses --assume-yes: %q", spec.ID, step.Name, joined)
			}
		}
	}
}

func TestBuiltinGithubCLIRecipeRegistersRepository(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}

	gh, ok := reg.Resolve("gh")
	if !ok {
		t.Fatal("expected gh in catalog")
	}

	registerIdx, refreshIdx, installIdx := -1, -1, -1
	for i, step := range gh.Recipe {
		switch {
		case step.Kind == StepWriteFile:
			registerIdx = i
			if step.Path != "/etc/apt/sources.list.d/github-cli.list" {
				t.Fatalf("unexpected sources path %q", step.Path)
			}
			if !strings.HasPrefix(step.Content, "deb [signed-by=") {
				t.Fatalf("unexpected sources line %q", step.Content)
			}
			if !strings.HasSuffix(step.Content, "\n") {
				t.Fatal("sources line must end with newline")
			}
		case step.Kind == StepRun && len(step.Argv) > 1 && step.Argv[0] == "apt-get":
			if step.Argv[len(step.Argv)-1] == "update" {
				refreshIdx = i
			}
			if step.Argv[len(step.Argv)-1] == "gh" {
				installIdx = i
			}
		}
	}

	if registerIdx < 0 || refreshIdx < 0 || installIdx < 0 {
		t.Fatalf("expected register/refresh/install steps, got %d/%d/%d", registerIdx, refreshIdx, installIdx)
	}
	if !(registerIdx < refreshIdx && refreshIdx < installIdx) {
		t.Fatalf("expected register < refresh < install, got %d/%d/%d", registerIdx, refreshIdx, installIdx)
	}
}

func TestBuiltinDependencyChain(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}

	chain := map[string]string{"nvim": "bob", "bob": "rust", "rust": "wget", "gh": "wget"}
	for tool, dep := range chain {
		spec, ok := reg.Resolve(tool)
		if !ok {
			t.Fatalf("expected %s in catalog", tool)
		}
		found := false
		for _, d := range spec.DependsOn {
			if d == dep {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %s to depend on %s, got %v", tool, dep, spec.DependsOn)
		}
	}
}

func TestBuiltinUsesAptClassification(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}

	apt := map[string]bool{
		"wget": true, "git": true, "ripgrep": true, "gh": true,
		"rust": false, "bob": false, "yazi": false, "nvim": false,
	}
	for id, want := range apt {
		spec, _ := reg.Resolve(id)
		if spec.UsesApt() != want {
			t.Fatalf("%s: expected UsesApt=%v", id, want)
		}
	}
}

func TestBuiltinProbeBinary(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}

	ripgrep, _ := reg.Resolve("ripgrep")
	if ripgrep.ProbeBinary() != "rg" {
		t.Fatalf("expected rg, got %q", ripgrep.ProbeBinary())
	}

	rust, _ := reg.Resolve("rust")
	if rust.ProbeBinary() != "" {
		t.Fatalf("expected shell-wrapped probe to report no binary, got %q", rust.ProbeBinary())
	}
}
