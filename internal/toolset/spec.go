package toolset

import "os"

// StepKind selects how a recipe step executes.
type StepKind string

const (
	// StepRun invokes a command on the target.
	StepRun StepKind = "run"
	// StepWriteFile places a file on the target verbatim.
	StepWriteFile StepKind = "write-file"
)

// Step is one ordered action of an install recipe.
type Step struct {
	Kind StepKind
	// Name is the short label used in logs and run reports.
	Name string

	// Argv and Env apply to StepRun. Env entries are KEY=VALUE pairs added
	// on top of the target's environment.
	Argv []string
	Env  []string

	// Path, Content, and Mode apply to StepWriteFile.
	Path    string
	Content string
	Mode    os.FileMode
}

// Spec declares one managed tool: how to detect it, how to install it, and
// which other tools its recipe assumes are already present.
type Spec struct {
	ID          string
	Name        string
	Description string

	// Probe is the version command whose exit status decides presence.
	Probe []string

	// Recipe is the ordered step list run when the tool is absent.
	Recipe []Step

	// DependsOn lists tool IDs that must be present before this recipe runs.
	DependsOn []string

	// Optional marks entries a config skip list may exclude from the run.
	Optional bool
}

// UsesApt reports whether any recipe step invokes the system package manager.
func (s Spec) UsesApt() bool {
	for _, step := range s.Recipe {
		if step.Kind == StepRun && len(step.Argv) > 0 && step.Argv[0] == "apt-get" {
			return true
		}
	}
	return false
}

// ProbeBinary names the executable a direct probe invokes. Shell-wrapped
// probes return "" since no single binary is on the default PATH.
func (s Spec) ProbeBinary() string {
	if len(s.Probe) == 0 || s.Probe[0] == "sh" {
		return ""
	}
	return s.Probe[0]
}
