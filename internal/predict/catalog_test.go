package predict

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/elements"
	"github.com/HenrINC/sat-cluster-predictor/internal/orbit"
)

func catalogConfig() config.Config {
	cfg := config.Default()
	cfg.Prediction = config.PredictionConfig{Days: 1, StepSeconds: 30, RefineToleranceSeconds: 1, Workers: 4}
	cfg.Satellites = []config.Satellite{
		{Name: "SAT ALPHA", NoradID: 101, FrequencyMHz: 137.1},
		{Name: "SAT BRAVO", NoradID: 102, FrequencyMHz: 137.9},
	}
	cfg.GroundStations = []config.GroundStation{
		{Name: "north", Latitude: 69.6, Longitude: 18.9, Altitude: 10, MinElevation: 10, Satellites: []int{101, 102}},
		{Name: "south", Latitude: -33.9, Longitude: 18.4, Altitude: 50, MinElevation: 10, Satellites: []int{101, 102}},
	}
	return cfg
}

func catalogElements() elements.Set {
	return elements.Set{
		"SAT ALPHA": {Name: "SAT ALPHA", NoradID: 101},
		"SAT BRAVO": {Name: "SAT BRAVO", NoradID: 102},
	}
}

// peakProvider serves each (satellite, station) pair a triangular pass
// peaking at its configured offset from t0.
func peakProvider(peaks map[string]time.Duration) ProviderFactory {
	return func(el elements.Element, st config.GroundStation) (orbit.ElevationFunc, error) {
		offset, ok := peaks[fmt.Sprintf("%d/%s", el.NoradID, st.Name)]
		if !ok {
			return nil, fmt.Errorf("no curve for NORAD %d at %s", el.NoradID, st.Name)
		}
		return triangle(t0.Add(offset), 45, 0.15), nil
	}
}

// Scenario: two satellites over two stations with overlapping passes come
// out as the union of all four windows, ordered by start time with ties
// broken by NORAD id.
func TestBuildCatalogUnionSorted(t *testing.T) {
	peaks := map[string]time.Duration{
		"101/north": 10 * time.Minute,
		"102/south": 10 * time.Minute, // identical curve: exact start-time tie with 101/north
		"101/south": 15 * time.Minute,
		"102/north": 20 * time.Minute,
	}

	e := NewEngine(catalogConfig(), discard()).WithProvider(peakProvider(peaks))
	cat := e.BuildCatalog(context.Background(), catalogElements(), t0)

	if len(cat.Failures) != 0 {
		t.Fatalf("failures: %v", cat.Failures)
	}
	if len(cat.Windows) != 4 {
		t.Fatalf("got %d windows, want 4", len(cat.Windows))
	}

	type key struct {
		id      int
		station string
	}
	var got []key
	for _, w := range cat.Windows {
		got = append(got, key{w.NoradID, w.Station.Name})
	}
	want := []key{{101, "north"}, {102, "south"}, {101, "south"}, {102, "north"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	for i := 1; i < len(cat.Windows); i++ {
		if cat.Windows[i].Start.Before(cat.Windows[i-1].Start) {
			t.Errorf("windows not sorted at %d", i)
		}
	}
}

func TestBuildCatalogDeterministic(t *testing.T) {
	peaks := map[string]time.Duration{
		"101/north": 10 * time.Minute,
		"102/south": 10 * time.Minute,
		"101/south": 15 * time.Minute,
		"102/north": 20 * time.Minute,
	}

	e := NewEngine(catalogConfig(), discard()).WithProvider(peakProvider(peaks))
	first := e.BuildCatalog(context.Background(), catalogElements(), t0)
	second := e.BuildCatalog(context.Background(), catalogElements(), t0)

	if !reflect.DeepEqual(first.Windows, second.Windows) {
		t.Errorf("catalogs differ between identical runs")
	}
}

// Scenario: a satellite missing from the element set is recorded as a
// failed pair at each station tracking it; other pairs are unaffected.
func TestBuildCatalogMissingElements(t *testing.T) {
	peaks := map[string]time.Duration{
		"101/north": 10 * time.Minute,
		"101/south": 15 * time.Minute,
	}

	set := catalogElements()
	delete(set, "SAT BRAVO")

	e := NewEngine(catalogConfig(), discard()).WithProvider(peakProvider(peaks))
	cat := e.BuildCatalog(context.Background(), set, t0)

	if len(cat.Windows) != 2 {
		t.Errorf("got %d windows, want 2 from SAT ALPHA", len(cat.Windows))
	}
	if len(cat.Failures) != 2 {
		t.Fatalf("got %d failures, want 2 (one per station tracking 102)", len(cat.Failures))
	}
	for _, f := range cat.Failures {
		if f.Pair.NoradID != 102 {
			t.Errorf("unexpected failed pair %+v", f.Pair)
		}
		if f.Err == nil {
			t.Error("failure without error")
		}
	}
}

func TestBuildCatalogProviderFailure(t *testing.T) {
	factory := func(el elements.Element, st config.GroundStation) (orbit.ElevationFunc, error) {
		if el.NoradID == 102 {
			return nil, errors.New("corrupt elements")
		}
		return triangle(t0.Add(10*time.Minute), 45, 0.15), nil
	}

	e := NewEngine(catalogConfig(), discard()).WithProvider(factory)
	cat := e.BuildCatalog(context.Background(), catalogElements(), t0)

	if len(cat.Windows) != 2 {
		t.Errorf("got %d windows, want 2", len(cat.Windows))
	}
	if len(cat.Failures) != 2 {
		t.Errorf("got %d failures, want 2", len(cat.Failures))
	}
}

// Scenario: a provider that never exceeds the threshold yields an empty,
// non-failed catalog.
func TestBuildCatalogNoPasses(t *testing.T) {
	factory := func(el elements.Element, st config.GroundStation) (orbit.ElevationFunc, error) {
		return func(time.Time) (float64, error) { return 2, nil }, nil
	}

	e := NewEngine(catalogConfig(), discard()).WithProvider(factory)
	cat := e.BuildCatalog(context.Background(), catalogElements(), t0)

	if len(cat.Windows) != 0 || len(cat.Failures) != 0 {
		t.Errorf("windows=%d failures=%d, want 0/0", len(cat.Windows), len(cat.Failures))
	}
}

// Scenario: the horizon ends mid-pass; the unfinished pass is not emitted.
func TestBuildCatalogHorizonEndsMidPass(t *testing.T) {
	cfg := catalogConfig()
	cfg.GroundStations = cfg.GroundStations[:1]
	cfg.GroundStations[0].Satellites = []int{101}

	// Peak near the end of the 24h horizon; the set falls outside it.
	peaks := map[string]time.Duration{"101/north": 24*time.Hour - 2*time.Minute}

	e := NewEngine(cfg, discard()).WithProvider(peakProvider(peaks))
	cat := e.BuildCatalog(context.Background(), elements.Set{
		"SAT ALPHA": {Name: "SAT ALPHA", NoradID: 101},
	}, t0)

	if len(cat.Windows) != 0 {
		t.Errorf("got %d windows from a pass the horizon cuts off, want 0", len(cat.Windows))
	}
	if len(cat.Failures) != 0 {
		t.Errorf("unexpected failures: %v", cat.Failures)
	}
}

func TestSGP4ProviderRejectsBadElements(t *testing.T) {
	_, err := SGP4Provider(elements.Element{
		Name: "BROKEN", NoradID: 1, Line1: "1 garbage", Line2: "2 garbage",
	}, config.GroundStation{Name: "oslo", Latitude: 59.91, Longitude: 10.75})
	if err == nil {
		t.Fatal("expected error for malformed element lines")
	}
}
