package main

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rigctl/internal/config"
	"github.com/danmuck/rigctl/internal/observability"
	"github.com/danmuck/rigctl/internal/probe"
	"github.com/danmuck/rigctl/internal/provision"
	"github.com/danmuck/rigctl/internal/toolset"
)

func main() {
	configPath := flag.String("config", "", "path to a rigctl config file")
	planOnly := flag.Bool("plan", false, "probe the catalog and print the plan without installing")
	reportPath := flag.String("report", "", "write the JSON run report to this path")
	flag.Parse()

	observability.InitLogger("rigctl")

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
		log.Info().Str("path", *configPath).Msg("loaded config")
	}
	if *reportPath != "" {
		cfg.Report.Path = *reportPath
	}

	reg, err := toolset.Builtin()
	if err != nil {
		log.Fatal().Err(err).Msg("tool catalog is invalid")
	}
	reg, err = reg.Without(cfg.Tools.Skip)
	if err != nil {
		log.Fatal().Err(err).Msg("skip list rejected")
	}

	target, err := config.TargetRunner(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("target selection failed")
	}

	svc := provision.NewService(provision.Config{
		Target:          config.TargetLabel(cfg),
		RefreshAptIndex: cfg.Apt.RefreshIndex,
		ReportPath:      cfg.Report.Path,
		MetricsTextfile: cfg.Report.MetricsTextfile,
	}, reg, target)

	if *planOnly {
		if err := printPlan(svc); err != nil {
			log.Fatal().Err(err).Msg("plan failed")
		}
		return
	}

	if err := svc.Run(); err != nil {
		log.Fatal().Err(err).Msg("provisioning failed")
	}
}

// printPlan writes probe results and the derived install order to stdout.
// Logs go to stderr, so plan output stays pipeable.
func printPlan(svc *provision.Service) error {
	built, err := svc.Plan()
	if err != nil {
		return err
	}

	for _, entry := range built.Entries() {
		if entry.Status == probe.StatusPresent {
			fmt.Printf("present  %-8s %s\n", entry.Spec.ID, entry.Version)
			continue
		}
		fmt.Printf("missing  %s\n", entry.Spec.ID)
	}

	ordered, err := built.OrderedMissing()
	if err != nil {
		return err
	}
	if len(ordered) == 0 {
		fmt.Println("nothing to install")
		return nil
	}

	fmt.Println("install order:")
	for i, entry := range ordered {
		fmt.Printf("  %d. %s (%d steps)\n", i+1, entry.Spec.ID, len(entry.Spec.Recipe))
	}
	return nil
}
