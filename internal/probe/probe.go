package probe

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rigctl/internal/runner"
	"github.com/danmuck/rigctl/internal/toolset"
)

// Status is the probed presence state of a tool.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Result is one tool's probe outcome.
type Result struct {
	Tool    string
	Status  Status
	Version string
	Path    string
}

// Prober checks tool presence by running version commands on the target.
type Prober struct {
	Runner runner.Runner
}

// Probe runs the spec's version command through the target runner. Present
// requires exit 0; a missing binary (exit 127) and any failing exit both
// report Absent. Probing never fails the run and never mutates the target.
func (p Prober) Probe(spec toolset.Spec) Result {
	stdout, stderr, exit, err := p.Runner.Run(spec.Probe[0], spec.Probe[1:]...)
	if err != nil {
		log.Debug().
			Str("tool", spec.ID).
			Int32("exit", exit).
			Err(err).
			Msg("probe reported absent")
		return Result{Tool: spec.ID, Status: StatusAbsent}
	}

	version := firstLine(stdout)
	if version == "" {
		version = firstLine(stderr)
	}

	log.Debug().
		Str("tool", spec.ID).
		Str("version", version).
		Msg("probe reported present")

	return Result{
		Tool:    spec.ID,
		Status:  StatusPresent,
		Version: version,
		Path:    p.resolvePath(spec.ProbeBinary()),
	}
}

// ProbeAll probes every spec once, in catalog order.
func (p Prober) ProbeAll(specs []toolset.Spec) []Result {
	results := make([]Result, 0, len(specs))
	for _, spec := range specs {
		results = append(results, p.Probe(spec))
	}
	return results
}

// resolvePath locates a directly probed binary with command -v. Resolution is
// best effort; lookup failures leave the path empty.
func (p Prober) resolvePath(binary string) string {
	if binary == "" {
		return ""
	}
	stdout, _, _, err := p.Runner.Run("sh", "-c", "command -v -- "+binary)
	if err != nil {
		return ""
	}
	return firstLine(stdout)
}

func firstLine(out []byte) string {
	text := strings.TrimSpace(string(out))
	if text == "" {
		return ""
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
