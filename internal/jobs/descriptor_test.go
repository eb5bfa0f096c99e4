package jobs

import (
	"reflect"
	"testing"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/predict"
)

var (
	passStart = time.Date(2025, 2, 14, 13, 21, 42, 0, time.UTC)
	testSt    = config.GroundStation{Name: "oslo", Latitude: 59.91, Longitude: 10.75, Altitude: 23, MinElevation: 10, Satellites: []int{25338}}
)

func window(sat string, id int, start time.Time) predict.Window {
	return predict.Window{
		Satellite:       sat,
		NoradID:         id,
		FrequencyMHz:    137.62,
		Station:         testSt,
		Start:           start,
		Culmination:     start.Add(4 * time.Minute),
		End:             start.Add(8 * time.Minute),
		MaxElevation:    45.678,
		DurationSeconds: 480,
	}
}

func TestSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"NOAA 15", "noaa-15"},
		{"ISS (ZARYA)", "iss-(zarya)"},
		{" METEOR-M 2 ", "meteor-m-2"},
		{"noaa-19", "noaa-19"},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJobName(t *testing.T) {
	got := JobName("NOAA 15", passStart, 7)
	if got != "record-noaa-15-0214-1321-007" {
		t.Errorf("JobName = %q", got)
	}
}

func TestJobNameUsesUTC(t *testing.T) {
	zone := time.FixedZone("CEST", 2*3600)
	local := time.Date(2025, 6, 1, 0, 30, 0, 0, zone) // 2025-05-31 22:30 UTC

	got := JobName("NOAA 18", local, 1)
	if got != "record-noaa-18-0531-2230-001" {
		t.Errorf("JobName = %q, want the UTC-derived time part", got)
	}
}

func TestSleepSeconds(t *testing.T) {
	now := passStart

	cases := []struct {
		name  string
		start time.Time
		want  int64
	}{
		{"future", now.Add(90*time.Second + 900*time.Millisecond), 90},
		{"exact", now, 0},
		{"past", now.Add(-time.Minute), 0},
		{"just past", now.Add(-500 * time.Millisecond), 0},
	}
	for _, tc := range cases {
		if got := SleepSeconds(tc.start, now); got != tc.want {
			t.Errorf("%s: SleepSeconds = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestBuildSequencesAndFields(t *testing.T) {
	cat := predict.Catalog{Windows: []predict.Window{
		window("NOAA 15", 25338, passStart),
		window("NOAA 18", 28654, passStart.Add(30*time.Minute)),
		window("NOAA 15", 25338, passStart.Add(100*time.Minute)),
	}}

	now := passStart.Add(-10 * time.Minute)
	descs := NewBuilder("recordings").Build(cat, now)

	if len(descs) != 3 {
		t.Fatalf("got %d descriptors, want 3", len(descs))
	}

	wantNames := []string{
		"record-noaa-15-0214-1321-001",
		"record-noaa-18-0214-1351-002",
		"record-noaa-15-0214-1501-003",
	}
	for i, want := range wantNames {
		if descs[i].Name != want {
			t.Errorf("descs[%d].Name = %q, want %q", i, descs[i].Name, want)
		}
	}

	d := descs[0]
	if d.Namespace != "recordings" {
		t.Errorf("namespace = %q", d.Namespace)
	}
	if d.SleepSeconds != 600 {
		t.Errorf("sleep = %d, want 600", d.SleepSeconds)
	}
	if d.DurationSeconds != 480 {
		t.Errorf("duration = %d", d.DurationSeconds)
	}
	if d.Station.Name != "oslo" {
		t.Errorf("station = %q", d.Station.Name)
	}
}

func TestBuildDeterministic(t *testing.T) {
	cat := predict.Catalog{Windows: []predict.Window{
		window("NOAA 15", 25338, passStart),
		window("NOAA 19", 33591, passStart.Add(time.Hour)),
	}}
	now := passStart.Add(-5 * time.Minute)

	first := NewBuilder("recordings").Build(cat, now)
	second := NewBuilder("recordings").Build(cat, now)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical catalog and now produced different descriptors")
	}
}

func TestBuildEmptyCatalog(t *testing.T) {
	descs := NewBuilder("recordings").Build(predict.Catalog{}, passStart)
	if len(descs) != 0 {
		t.Errorf("got %d descriptors from an empty catalog", len(descs))
	}
}
