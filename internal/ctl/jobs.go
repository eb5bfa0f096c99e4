package ctl

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/app"
	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/jobs"
)

// JobsOptions controls the jobs command.
type JobsOptions struct {
	Count      int
	Manifests  bool
	Submit     bool
	Kubeconfig string
	JSON       bool
}

// Jobs shows the recording jobs the current catalog would produce. With
// Submit set it runs the full pipeline against the cluster instead.
func Jobs(ctx context.Context, cfg config.Config, logger *log.Logger, opts JobsOptions) error {
	if opts.Submit {
		return submitJobs(ctx, cfg, logger, opts)
	}

	cat, now, err := buildCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	descs := jobs.NewBuilder(cfg.Jobs.Namespace).Build(cat, now)
	if opts.Count > 0 && opts.Count < len(descs) {
		descs = descs[:opts.Count]
	}

	if opts.Manifests {
		manifests := make([]*jobs.Job, len(descs))
		for i, d := range descs {
			manifests[i] = jobs.Manifest(d, cfg.Jobs)
		}
		return printJSON(manifests)
	}
	if opts.JSON {
		return printJSON(descs)
	}

	fmt.Println()
	fmt.Println(header("  RECORDING JOBS"))
	fmt.Printf("  %s %s\n", colorize(dim, "Namespace:"), cfg.Jobs.Namespace)
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 84)))

	if len(descs) == 0 {
		fmt.Println(colorize(dim, "  No jobs to create."))
		fmt.Println()
		return nil
	}

	fmt.Printf("  %-34s %-22s %10s %10s %6s\n",
		colorize(dim, "Job"),
		colorize(dim, "Start"),
		colorize(dim, "Sleep"),
		colorize(dim, "Duration"),
		colorize(dim, "Elev"),
	)
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 84)))

	for _, d := range descs {
		fmt.Printf("  %-34s %-22s %10s %10s %5.1f°\n",
			colorize(bold, d.Name),
			formatTime(d.Start),
			formatDuration(time.Duration(d.SleepSeconds)*time.Second),
			formatDuration(time.Duration(d.DurationSeconds)*time.Second),
			d.MaxElevation,
		)
	}
	fmt.Println()
	return nil
}

func submitJobs(ctx context.Context, cfg config.Config, logger *log.Logger, opts JobsOptions) error {
	sum, err := app.New(app.Options{
		Logger:     logger,
		Cfg:        cfg,
		Kubeconfig: opts.Kubeconfig,
	}).Run(ctx)
	if err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(sum)
	}

	fmt.Println()
	fmt.Println(header("  SUBMISSION SUMMARY"))
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 50)))
	fmt.Printf("  Passes predicted: %d\n", sum.PassesPredicted)
	if sum.PairFailures > 0 {
		fmt.Printf("  Pair failures:    %s\n", colorize(yellow, fmt.Sprintf("%d", sum.PairFailures)))
	}
	fmt.Printf("  Jobs created:     %s\n", colorize(green, fmt.Sprintf("%d", sum.JobsCreated)))
	fmt.Printf("  Already existed:  %d\n", sum.JobsAlreadyExist)
	if sum.JobsFailed > 0 {
		fmt.Printf("  Failed:           %s\n", colorize(red, fmt.Sprintf("%d", sum.JobsFailed)))
	}
	fmt.Println()
	return nil
}
