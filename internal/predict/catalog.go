package predict

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/elements"
	"github.com/HenrINC/sat-cluster-predictor/internal/orbit"
)

// Pair names one (station, satellite) computation.
type Pair struct {
	Station   string `json:"station"`
	Satellite string `json:"satellite"`
	NoradID   int    `json:"norad_id"`
}

// Failure records a pair that contributed zero windows.
type Failure struct {
	Pair Pair
	Err  error
}

// Catalog is one run's merged prediction output: every valid window across
// every pair, sorted by start time, plus the pairs that failed.
type Catalog struct {
	Windows  []Window
	Failures []Failure
}

// ProviderFactory builds the elevation function for one pair. Production
// uses SGP4Provider; tests substitute synthetic curves.
type ProviderFactory func(el elements.Element, st config.GroundStation) (orbit.ElevationFunc, error)

// SGP4Provider backs the elevation function with SGP4 propagation of the
// pair's element set.
func SGP4Provider(el elements.Element, st config.GroundStation) (orbit.ElevationFunc, error) {
	prop, err := orbit.NewPropagator(el.Line1, el.Line2, el.NoradID)
	if err != nil {
		return nil, err
	}
	obs := orbit.NewObserver(st.Latitude, st.Longitude, st.Altitude)
	return prop.ElevationFunc(obs), nil
}

// Engine fans pass detection out over every configured (station,
// satellite) pair.
type Engine struct {
	cfg      config.Config
	provider ProviderFactory
	log      *log.Logger
}

func NewEngine(cfg config.Config, logger *log.Logger) *Engine {
	return &Engine{cfg: cfg, provider: SGP4Provider, log: logger}
}

// WithProvider swaps the elevation provider factory and returns the engine.
func (e *Engine) WithProvider(f ProviderFactory) *Engine {
	e.provider = f
	return e
}

type pairJob struct {
	sat config.Satellite
	st  config.GroundStation
	el  elements.Element
	ok  bool
}

// BuildCatalog runs detection for every pair over the configured horizon
// starting at start, merging results into one deterministically sorted
// catalog. Pair failures are recorded and logged, never fatal. Worker
// completion order cannot affect the output: results land in per-pair
// slots and are merged in configuration order before the final sort.
func (e *Engine) BuildCatalog(ctx context.Context, set elements.Set, start time.Time) Catalog {
	start = start.UTC()
	end := start.Add(e.cfg.Prediction.Horizon())

	var jobs []pairJob
	for _, st := range e.cfg.GroundStations {
		for _, id := range st.Satellites {
			sat, ok := e.cfg.SatelliteByID(id)
			if !ok {
				continue
			}
			el, found := set.ByNoradID(id)
			jobs = append(jobs, pairJob{sat: sat, st: st, el: el, ok: found})
		}
	}

	workers := e.cfg.Prediction.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type result struct {
		windows []Window
		failure *Failure
	}
	results := make([]result, len(jobs))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		if !job.ok {
			e.log.Printf("predict: no elements for %s (NORAD %d), skipping at %s",
				job.sat.Name, job.sat.NoradID, job.st.Name)
			results[i] = result{failure: &Failure{
				Pair: Pair{Station: job.st.Name, Satellite: job.sat.Name, NoradID: job.sat.NoradID},
				Err:  fmt.Errorf("no elements for NORAD %d", job.sat.NoradID),
			}}
			continue
		}

		wg.Add(1)
		go func(i int, job pairJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			windows, err := e.computePair(ctx, job, start, end)
			if err != nil {
				e.log.Printf("predict: %s at %s failed: %v", job.sat.Name, job.st.Name, err)
				results[i] = result{failure: &Failure{
					Pair: Pair{Station: job.st.Name, Satellite: job.sat.Name, NoradID: job.sat.NoradID},
					Err:  err,
				}}
				return
			}
			results[i] = result{windows: windows}
		}(i, job)
	}
	wg.Wait()

	var cat Catalog
	for _, r := range results {
		if r.failure != nil {
			cat.Failures = append(cat.Failures, *r.failure)
			continue
		}
		cat.Windows = append(cat.Windows, r.windows...)
	}

	sort.SliceStable(cat.Windows, func(i, j int) bool {
		a, b := cat.Windows[i], cat.Windows[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.NoradID != b.NoradID {
			return a.NoradID < b.NoradID
		}
		return a.Station.Name < b.Station.Name
	})

	e.log.Printf("predict: %d passes across %d pairs (%d failed) in next %dd",
		len(cat.Windows), len(jobs), len(cat.Failures), e.cfg.Prediction.Days)

	return cat
}

func (e *Engine) computePair(ctx context.Context, job pairJob, start, end time.Time) ([]Window, error) {
	fn, err := e.provider(job.el, job.st)
	if err != nil {
		return nil, fmt.Errorf("elevation provider: %w", err)
	}

	sampler := NewSampler(fn, e.cfg.Prediction.Step(), e.cfg.Prediction.Tolerance(), e.log)
	detector := NewDetector(sampler, job.st.MinElevation)
	events := detector.Events(ctx, start, end)

	return Assemble(events, job.sat, job.st), nil
}
