package provision

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rigctl/internal/observability"
	"github.com/danmuck/rigctl/internal/plan"
	"github.com/danmuck/rigctl/internal/probe"
	"github.com/danmuck/rigctl/internal/report"
	"github.com/danmuck/rigctl/internal/runner"
	"github.com/danmuck/rigctl/internal/toolset"
)

// Config carries the run driver knobs.
type Config struct {
	// Target labels the provisioned host in logs and reports.
	Target string
	// RefreshAptIndex refreshes the apt package index once before the
	// first apt-backed recipe runs.
	RefreshAptIndex bool
	// ReportPath, when set, receives the JSON run report.
	ReportPath string
	// MetricsTextfile, when set, receives the Prometheus textfile export.
	MetricsTextfile string
}

// DefaultConfig returns the driver defaults for a local run.
func DefaultConfig() Config {
	return Config{
		Target:          "local",
		RefreshAptIndex: true,
	}
}

// Service drives one provisioning pass over the tool catalog: probe
// everything, install whatever is missing in dependency order, and verify
// each install before moving on.
type Service struct {
	cfg       Config
	runner    runner.Runner
	registry  *toolset.Registry
	prober    probe.Prober
	installer Installer
}

// NewService wires a driver for the given catalog and execution target.
func NewService(cfg Config, reg *toolset.Registry, r runner.Runner) *Service {
	if strings.TrimSpace(cfg.Target) == "" {
		cfg.Target = "local"
	}
	return &Service{
		cfg:       cfg,
		runner:    r,
		registry:  reg,
		prober:    probe.Prober{Runner: r},
		installer: Installer{Runner: r},
	}
}

// Plan probes every catalog tool and returns the resulting plan without
// executing any install step.
func (s *Service) Plan() (*plan.Plan, error) {
	return plan.Build(s.prober, s.registry)
}

// Run provisions the target, honoring SIGINT and SIGTERM between steps.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.run(ctx)
}

func (s *Service) run(ctx context.Context) error {
	observability.RegisterMetrics()

	log.Info().
		Str("target", s.cfg.Target).
		Int("tools", s.registry.Len()).
		Msg("probing managed tools")

	built, err := plan.Build(s.prober, s.registry)
	if err != nil {
		return err
	}

	rec := report.NewRun(s.cfg.Target)
	for _, entry := range built.Entries() {
		observability.RecordProbe(entry.Spec.ID, string(entry.Status))
		if entry.Status == probe.StatusPresent {
			log.Info().
				Str("tool", entry.Spec.ID).
				Str("version", entry.Version).
				Msg("tool present")
			rec.Add(presentOutcome(entry))
			continue
		}
		log.Info().Str("tool", entry.Spec.ID).Msg("tool missing")
	}

	if built.AllPresent() {
		log.Info().Msg("all tools present, nothing to do")
		rec.Complete()
		s.writeArtifacts(rec)
		return nil
	}

	if err := s.checkPlatform(); err != nil {
		return err
	}

	ordered, err := built.OrderedMissing()
	if err != nil {
		return err
	}
	log.Info().Int("missing", len(ordered)).Msg("install queue ready")

	if s.cfg.RefreshAptIndex && anyUsesApt(ordered) {
		if err := s.refreshAptIndex(); err != nil {
			return err
		}
	}

	for idx, entry := range ordered {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted: %w", err)
		}

		log.Info().
			Str("tool", entry.Spec.ID).
			Int("steps", len(entry.Spec.Recipe)).
			Msg("installing missing tool")

		start := time.Now()
		res, err := s.installer.Install(ctx, entry.Spec)
		elapsed := time.Since(start)

		if err != nil {
			observability.RecordInstall(entry.Spec.ID, report.OutcomeFailed, elapsed)
			log.Error().
				Str("tool", entry.Spec.ID).
				Err(err).
				Msg("install failed, aborting run")
			rec.Add(failedOutcome(entry, res, elapsed, err))
			for _, skipped := range ordered[idx+1:] {
				rec.Add(abortedOutcome(skipped))
			}
			rec.Complete()
			s.writeArtifacts(rec)
			return err
		}

		observability.RecordInstall(entry.Spec.ID, report.OutcomeInstalled, elapsed)
		log.Info().
			Str("tool", entry.Spec.ID).
			Str("version", res.Verified.Version).
			Msg("tool installed and verified")
		rec.Add(installedOutcome(entry, res, elapsed))
	}

	log.Info().Int("installed", len(ordered)).Msg("provisioning complete")
	rec.Complete()
	s.writeArtifacts(rec)
	return nil
}

// checkPlatform confirms the target can run apt recipes before any install
// step executes.
func (s *Service) checkPlatform() error {
	stdout, stderr, exit, err := s.runner.Run("apt-get", "--version")
	if err != nil {
		return fmt.Errorf("%w: cmd=apt-get exit=%d stderr=%q: %v",
			ErrPlatformUnsupported, exit, trimOutput(stderr), err)
	}
	log.Debug().Str("version", aptBanner(stdout)).Msg("apt-get available")
	return nil
}

// refreshAptIndex runs the shared apt-get update step exactly once per run.
func (s *Service) refreshAptIndex() error {
	log.Info().Msg("refreshing apt package index")
	return s.installer.runStep("apt", toolset.AptUpdateStep())
}

// writeArtifacts persists the run report and metrics textfile when
// configured. Failures are logged, never fatal: the provisioning outcome
// already happened.
func (s *Service) writeArtifacts(rec *report.Run) {
	if s.cfg.ReportPath != "" {
		if err := rec.Write(s.cfg.ReportPath); err != nil {
			log.Warn().Str("path", s.cfg.ReportPath).Err(err).Msg("run report not written")
		} else {
			log.Info().Str("path", s.cfg.ReportPath).Msg("run report written")
		}
	}
	if s.cfg.MetricsTextfile != "" {
		if err := observability.ExportTextfile(s.cfg.MetricsTextfile); err != nil {
			log.Warn().Str("path", s.cfg.MetricsTextfile).Err(err).Msg("metrics textfile not written")
		}
	}
}

func anyUsesApt(entries []plan.Entry) bool {
	for _, entry := range entries {
		if entry.Spec.UsesApt() {
			return true
		}
	}
	return false
}

func presentOutcome(entry plan.Entry) report.ToolOutcome {
	return report.ToolOutcome{
		Tool:         entry.Spec.ID,
		Name:         entry.Spec.Name,
		StatusBefore: string(probe.StatusPresent),
		StatusAfter:  string(probe.StatusPresent),
		Version:      entry.Version,
		Path:         entry.Path,
		Outcome:      report.OutcomePresent,
	}
}

func installedOutcome(entry plan.Entry, res InstallResult, elapsed time.Duration) report.ToolOutcome {
	return report.ToolOutcome{
		Tool:         entry.Spec.ID,
		Name:         entry.Spec.Name,
		StatusBefore: string(probe.StatusAbsent),
		StatusAfter:  string(probe.StatusPresent),
		Version:      res.Verified.Version,
		Path:         res.Verified.Path,
		Steps:        res.Steps,
		DurationMS:   elapsed.Milliseconds(),
		Outcome:      report.OutcomeInstalled,
	}
}

func failedOutcome(entry plan.Entry, res InstallResult, elapsed time.Duration, err error) report.ToolOutcome {
	after := probe.StatusAbsent
	if res.Verified.Status != "" {
		after = res.Verified.Status
	}
	return report.ToolOutcome{
		Tool:         entry.Spec.ID,
		Name:         entry.Spec.Name,
		StatusBefore: string(probe.StatusAbsent),
		StatusAfter:  string(after),
		Steps:        res.Steps,
		DurationMS:   elapsed.Milliseconds(),
		Outcome:      report.OutcomeFailed,
		Error:        err.Error(),
	}
}

func abortedOutcome(entry plan.Entry) report.ToolOutcome {
	return report.ToolOutcome{
		Tool:         entry.Spec.ID,
		Name:         entry.Spec.Name,
		StatusBefore: string(probe.StatusAbsent),
		StatusAfter:  string(probe.StatusAbsent),
		Outcome:      report.OutcomeAborted,
	}
}

// aptBanner extracts "apt <version>" from the apt-get version output.
func aptBanner(out []byte) string {
	fields := strings.Fields(string(out))
	if len(fields) < 2 {
		return ""
	}
	return fields[0] + " " + fields[1]
}
