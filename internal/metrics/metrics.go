// Package metrics publishes per-run counters in Prometheus text format.
//
// The predictor is a run-to-completion program, so instead of serving
// /metrics it writes a textfile for the node_exporter textfile collector.
// Each run owns a private registry; nothing leaks into the default one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run holds the gauges describing one prediction sweep.
type Run struct {
	reg *prometheus.Registry

	elementsAvailable prometheus.Gauge
	passesPredicted   prometheus.Gauge
	pairFailures      prometheus.Gauge
	jobsCreated       prometheus.Gauge
	jobsAlreadyExist  prometheus.Gauge
	jobsFailed        prometheus.Gauge
	lastRunTimestamp  prometheus.Gauge
	runDuration       prometheus.Gauge
}

func NewRun() *Run {
	r := &Run{
		reg: prometheus.NewRegistry(),
		elementsAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_elements_available",
			Help: "Satellites with usable orbital elements in the last run.",
		}),
		passesPredicted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_passes_predicted",
			Help: "Pass windows predicted by the last run.",
		}),
		pairFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_pair_failures",
			Help: "Station and satellite pairs the last run could not predict.",
		}),
		jobsCreated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_jobs_created",
			Help: "Recording jobs created by the last run.",
		}),
		jobsAlreadyExist: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_jobs_already_exist",
			Help: "Recording jobs that already existed during the last run.",
		}),
		jobsFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_jobs_failed",
			Help: "Recording job submissions that failed during the last run.",
		}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_run_duration_seconds",
			Help: "Wall-clock duration of the last run.",
		}),
	}

	r.reg.MustRegister(
		r.elementsAvailable,
		r.passesPredicted,
		r.pairFailures,
		r.jobsCreated,
		r.jobsAlreadyExist,
		r.jobsFailed,
		r.lastRunTimestamp,
		r.runDuration,
	)
	return r
}

func (r *Run) SetElements(available int) {
	r.elementsAvailable.Set(float64(available))
}

func (r *Run) SetCatalog(passes, pairFailures int) {
	r.passesPredicted.Set(float64(passes))
	r.pairFailures.Set(float64(pairFailures))
}

func (r *Run) SetSubmission(created, alreadyExist, failed int) {
	r.jobsCreated.Set(float64(created))
	r.jobsAlreadyExist.Set(float64(alreadyExist))
	r.jobsFailed.Set(float64(failed))
}

// Finish stamps the run as complete.
func (r *Run) Finish(started time.Time) {
	r.lastRunTimestamp.SetToCurrentTime()
	r.runDuration.Set(time.Since(started).Seconds())
}

// WriteTextfile renders the registry to path in text exposition format.
// The write goes through a temp file and rename, so collectors never see
// a half-written file. An empty path disables the write.
func (r *Run) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}

// Gatherer exposes the run's registry for callers that render elsewhere.
func (r *Run) Gatherer() prometheus.Gatherer {
	return r.reg
}
