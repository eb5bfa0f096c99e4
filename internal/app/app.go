// Package app wires the prediction pipeline end to end: load orbital
// elements, predict pass windows for every station and satellite pair,
// derive recording job descriptors, and submit them to the cluster. It
// owns the run's lifecycle and is the single place the stages meet.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/elements"
	"github.com/HenrINC/sat-cluster-predictor/internal/jobs"
	"github.com/HenrINC/sat-cluster-predictor/internal/k8s"
	"github.com/HenrINC/sat-cluster-predictor/internal/metrics"
	"github.com/HenrINC/sat-cluster-predictor/internal/predict"
)

// Options holds everything the App needs from the caller.
type Options struct {
	Logger *log.Logger
	Cfg    config.Config

	// DryRun predicts and prints but never talks to the cluster.
	DryRun bool
	// Kubeconfig overrides the default kubeconfig lookup. Ignored when
	// running in-cluster or when a Sink is injected.
	Kubeconfig string
	// Sink replaces the Kubernetes client, mainly for tests.
	Sink jobs.Sink
	// Provider replaces SGP4 propagation, mainly for tests.
	Provider predict.ProviderFactory
}

// Summary reports what one run did.
type Summary struct {
	Timestamp         time.Time `json:"timestamp"`
	PredictionDays    int       `json:"prediction_days"`
	GroundStations    int       `json:"ground_stations"`
	Satellites        int       `json:"satellites"`
	ElementsAvailable int       `json:"elements_available"`
	PassesPredicted   int       `json:"passes_predicted"`
	PairFailures      int       `json:"pair_failures"`
	JobsCreated       int       `json:"jobs_created"`
	JobsAlreadyExist  int       `json:"jobs_already_exist"`
	JobsFailed        int       `json:"jobs_failed"`
	DryRun            bool      `json:"dry_run"`
}

// App runs the pipeline once and exits. There is no daemon loop; a
// CronJob or timer owns the cadence.
type App struct {
	log        *log.Logger
	cfg        config.Config
	dryRun     bool
	kubeconfig string
	sink       jobs.Sink
	provider   predict.ProviderFactory
}

func New(opts Options) *App {
	return &App{
		log:        opts.Logger,
		cfg:        opts.Cfg,
		dryRun:     opts.DryRun,
		kubeconfig: opts.Kubeconfig,
		sink:       opts.Sink,
		provider:   opts.Provider,
	}
}

// Run executes one prediction sweep. Element load failures are fatal;
// individual pair or submission failures are tallied and reported in the
// summary instead.
func (a *App) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	now := started.UTC()
	run := metrics.NewRun()

	source := elements.NewSource(a.cfg.Elements, a.log)
	set, err := source.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	run.SetElements(len(set))

	engine := predict.NewEngine(a.cfg, a.log)
	if a.provider != nil {
		engine = engine.WithProvider(a.provider)
	}
	cat := engine.BuildCatalog(ctx, set, now)
	run.SetCatalog(len(cat.Windows), len(cat.Failures))

	descs := jobs.NewBuilder(a.cfg.Jobs.Namespace).Build(cat, now)

	var res jobs.Result
	if a.dryRun {
		for _, d := range descs {
			a.log.Printf("dry run: would create %s (start %s, sleeps %ds, max elev %.1f)",
				d.Name, d.Start.Format(time.RFC3339), d.SleepSeconds, d.MaxElevation)
		}
	} else if len(descs) > 0 {
		sink, err := a.resolveSink()
		if err != nil {
			return Summary{}, err
		}
		res = jobs.NewSubmitter(sink, a.cfg.Jobs, a.log).SubmitAll(ctx, descs)
		run.SetSubmission(res.Created, res.AlreadyExists, res.Failed)
	}

	run.Finish(started)
	if err := run.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
		a.log.Printf("metrics: writing %s failed: %v", a.cfg.Metrics.TextfilePath, err)
	}

	sum := Summary{
		Timestamp:         now,
		PredictionDays:    a.cfg.Prediction.Days,
		GroundStations:    len(a.cfg.GroundStations),
		Satellites:        len(a.cfg.Satellites),
		ElementsAvailable: len(set),
		PassesPredicted:   len(cat.Windows),
		PairFailures:      len(cat.Failures),
		JobsCreated:       res.Created,
		JobsAlreadyExist:  res.AlreadyExists,
		JobsFailed:        res.Failed,
		DryRun:            a.dryRun,
	}
	a.log.Printf("run complete: %d passes, %d created, %d existing, %d failed in %.1fs",
		sum.PassesPredicted, sum.JobsCreated, sum.JobsAlreadyExist, sum.JobsFailed,
		time.Since(started).Seconds())
	return sum, nil
}

func (a *App) resolveSink() (jobs.Sink, error) {
	if a.sink != nil {
		return a.sink, nil
	}
	cfg, err := k8s.ResolveConfig(a.kubeconfig, a.log)
	if err != nil {
		return nil, fmt.Errorf("kubernetes: %w", err)
	}
	client, err := k8s.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("kubernetes: %w", err)
	}
	return jobs.NewKubernetesSink(client), nil
}
