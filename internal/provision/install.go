package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rigctl/internal/probe"
	"github.com/danmuck/rigctl/internal/runner"
	"github.com/danmuck/rigctl/internal/toolset"
)

var (
	ErrPlatformUnsupported = errors.New("provision: platform missing apt-get")
	ErrVerificationFailed  = errors.New("provision: install verification failed")
	ErrStepFailed          = errors.New("provision: install step failed")
)

// Installer executes one tool's recipe and verifies the result. Any step
// failure is fatal for the whole run; there are no retries.
type Installer struct {
	Runner runner.Runner
}

// InstallResult describes one finished install attempt.
type InstallResult struct {
	// Verified is the post-recipe probe outcome.
	Verified probe.Result
	// Steps counts the recipe steps that actually ran.
	Steps int
}

// Install runs the spec's recipe steps in order, then immediately re-probes
// the tool. A recipe that completes without the tool becoming present fails
// with ErrVerificationFailed.
func (i Installer) Install(ctx context.Context, spec toolset.Spec) (InstallResult, error) {
	res := InstallResult{}
	for _, step := range spec.Recipe {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("install %s interrupted: %w", spec.ID, err)
		}
		if err := i.runStep(spec.ID, step); err != nil {
			return res, err
		}
		res.Steps++
	}

	res.Verified = probe.Prober{Runner: i.Runner}.Probe(spec)
	if res.Verified.Status != probe.StatusPresent {
		return res, fmt.Errorf("%w: %s recipe completed but probe still reports absent", ErrVerificationFailed, spec.ID)
	}
	return res, nil
}

func (i Installer) runStep(tool string, step toolset.Step) error {
	if step.Kind == toolset.StepWriteFile {
		log.Info().
			Str("tool", tool).
			Str("step", step.Name).
			Str("path", step.Path).
			Msg("writing registration file")

		mode := step.Mode
		if mode == 0 {
			mode = 0o644
		}
		if err := i.Runner.WriteFile(step.Path, []byte(step.Content), mode); err != nil {
			return fmt.Errorf("%w: tool=%s step=%q path=%s: %v", ErrStepFailed, tool, step.Name, step.Path, err)
		}
		return nil
	}

	log.Info().
		Str("tool", tool).
		Str("step", step.Name).
		Msg("running install step")

	stdout, stderr, exitCode, err := i.Runner.RunEnv(step.Env, step.Argv[0], step.Argv[1:]...)
	if err == nil {
		return nil
	}
	return fmt.Errorf(
		"%w: tool=%s cmd=%s args=%q exit=%d stdout=%q stderr=%q: %v",
		ErrStepFailed,
		tool,
		step.Argv[0],
		strings.Join(step.Argv[1:], " "),
		exitCode,
		trimOutput(stdout),
		trimOutput(stderr),
		err,
	)
}

// trimOutput keeps subprocess output readable inside one error line.
func trimOutput(out []byte) string {
	text := strings.TrimSpace(string(out))
	const limit = 512
	if len(text) > limit {
		text = text[:limit] + "..."
	}
	return text
}
