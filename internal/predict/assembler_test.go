package predict

import (
	"testing"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
)

var (
	testSat = config.Satellite{Name: "NOAA 15", NoradID: 25338, FrequencyMHz: 137.62}
	testSt  = config.GroundStation{Name: "oslo", Latitude: 59.91, Longitude: 10.75, MinElevation: 10, Satellites: []int{25338}}
)

func at(sec int) time.Time {
	return t0.Add(time.Duration(sec) * time.Second)
}

func rise(sec int) Event             { return Event{Kind: Rise, Time: at(sec), Elevation: 10} }
func culm(sec int, el float64) Event { return Event{Kind: Culminate, Time: at(sec), Elevation: el} }
func set(sec int) Event              { return Event{Kind: Set, Time: at(sec), Elevation: 10} }

func TestAssembleCompleteTriple(t *testing.T) {
	windows := Assemble([]Event{rise(60), culm(300, 45), set(540)}, testSat, testSt)
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}

	w := windows[0]
	if !w.Start.Equal(at(60)) || !w.Culmination.Equal(at(300)) || !w.End.Equal(at(540)) {
		t.Errorf("window times = %s / %s / %s", w.Start, w.Culmination, w.End)
	}
	if w.MaxElevation != 45 {
		t.Errorf("max elevation = %v, want 45", w.MaxElevation)
	}
	if w.DurationSeconds != 480 {
		t.Errorf("duration = %d, want 480", w.DurationSeconds)
	}
	if w.Satellite != "NOAA 15" || w.NoradID != 25338 || w.FrequencyMHz != 137.62 {
		t.Errorf("identity = %s/%d/%v", w.Satellite, w.NoradID, w.FrequencyMHz)
	}
	if w.Station.Name != "oslo" {
		t.Errorf("station = %q, want oslo", w.Station.Name)
	}
}

func TestAssembleMultiplePasses(t *testing.T) {
	events := []Event{
		rise(60), culm(300, 45), set(540),
		rise(6000), culm(6240, 30), set(6480),
	}
	windows := Assemble(events, testSat, testSt)
	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}
	if !windows[1].Start.Equal(at(6000)) {
		t.Errorf("second window start = %s", windows[1].Start)
	}
}

func TestAssembleEventsBeforeFirstRiseIgnored(t *testing.T) {
	// Horizon opens mid-pass: a culmination and set with no rise must not
	// form a window, and must not disturb the following complete pass.
	events := []Event{
		culm(100, 50), set(200),
		rise(600), culm(840, 40), set(1080),
	}
	windows := Assemble(events, testSat, testSt)
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	if !windows[0].Start.Equal(at(600)) {
		t.Errorf("window start = %s, want %s", windows[0].Start, at(600))
	}
}

func TestAssembleDuplicateRiseKeepsFirstStart(t *testing.T) {
	events := []Event{rise(60), rise(120), culm(300, 45), set(540)}
	windows := Assemble(events, testSat, testSt)
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	if !windows[0].Start.Equal(at(60)) {
		t.Errorf("start = %s, want the first rise at %s", windows[0].Start, at(60))
	}
}

func TestAssembleRiseAfterCulminationRestarts(t *testing.T) {
	// A rise while waiting for the set abandons the recorded culmination
	// but keeps the original start.
	events := []Event{rise(60), culm(200, 20), rise(400), culm(600, 35), set(800)}
	windows := Assemble(events, testSat, testSt)
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	w := windows[0]
	if !w.Start.Equal(at(60)) {
		t.Errorf("start = %s, want original rise at %s", w.Start, at(60))
	}
	if !w.Culmination.Equal(at(600)) || w.MaxElevation != 35 {
		t.Errorf("culmination = %s/%v, want the re-detected one", w.Culmination, w.MaxElevation)
	}
}

func TestAssembleSecondCulminationIgnored(t *testing.T) {
	events := []Event{rise(60), culm(200, 30), culm(400, 60), set(540)}
	windows := Assemble(events, testSat, testSt)
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	if windows[0].MaxElevation != 30 || !windows[0].Culmination.Equal(at(200)) {
		t.Errorf("culmination = %s/%v, want the first one (30 deg at +200s)",
			windows[0].Culmination, windows[0].MaxElevation)
	}
}

func TestAssembleSetBeforeCulminationSkipped(t *testing.T) {
	// "First culmination after the rise, then first set after that": a set
	// with no culmination recorded yet is passed over.
	events := []Event{rise(60), set(120), culm(300, 45), set(540)}
	windows := Assemble(events, testSat, testSt)
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	if !windows[0].End.Equal(at(540)) {
		t.Errorf("end = %s, want the set after the culmination", windows[0].End)
	}
}

func TestAssembleBelowThresholdDiscarded(t *testing.T) {
	events := []Event{rise(60), culm(300, 5), set(540)}
	if windows := Assemble(events, testSat, testSt); len(windows) != 0 {
		t.Errorf("got %d windows for a 5 degree peak with a 10 degree threshold", len(windows))
	}
}

func TestAssembleDisorderedTimesDiscarded(t *testing.T) {
	// Refinement jitter can land the culmination outside (start, end);
	// such a window is dropped, not emitted.
	events := []Event{rise(100), culm(90, 45), set(200)}
	if windows := Assemble(events, testSat, testSt); len(windows) != 0 {
		t.Errorf("got %d windows with culmination before start", len(windows))
	}
}

func TestAssembleTrailingPartialDiscarded(t *testing.T) {
	events := []Event{rise(60), culm(300, 45)}
	if windows := Assemble(events, testSat, testSt); len(windows) != 0 {
		t.Errorf("got %d windows from an incomplete triple", len(windows))
	}
}

func TestAssembleEmptyStream(t *testing.T) {
	if windows := Assemble(nil, testSat, testSt); len(windows) != 0 {
		t.Errorf("got %d windows from no events", len(windows))
	}
}
