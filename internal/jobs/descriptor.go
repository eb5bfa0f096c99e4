// Package jobs turns pass windows into deterministic Kubernetes Job
// descriptors and submits them to the cluster.
//
// Naming is the idempotency story: record-<slug>-<MMDD-HHMM>-<seq> derives
// entirely from the sorted catalog, so a re-run over unchanged passes
// collides with its own earlier jobs instead of duplicating them.
package jobs

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/predict"
)

// Descriptor is the scheduling contract for one recording job.
type Descriptor struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`

	Satellite    string  `json:"satellite"`
	NoradID      int     `json:"norad_id"`
	FrequencyMHz float64 `json:"frequency_mhz"`

	Start           time.Time `json:"start"`
	Culmination     time.Time `json:"culmination"`
	End             time.Time `json:"end"`
	DurationSeconds int       `json:"duration_seconds"`
	MaxElevation    float64   `json:"max_elevation"`
	// SleepSeconds is how long the job waits before recording starts.
	SleepSeconds int64 `json:"sleep_seconds"`

	Station config.GroundStation `json:"station"`
}

// Builder derives descriptors from a sorted catalog.
type Builder struct {
	namespace string
}

func NewBuilder(namespace string) *Builder {
	return &Builder{namespace: namespace}
}

// Build maps every window of the already-sorted catalog to a descriptor.
// The sequence number is the window's 1-based catalog position, so an
// unchanged catalog always produces identical names.
func (b *Builder) Build(cat predict.Catalog, now time.Time) []Descriptor {
	descs := make([]Descriptor, 0, len(cat.Windows))
	for i, w := range cat.Windows {
		descs = append(descs, Descriptor{
			Name:            JobName(w.Satellite, w.Start, i+1),
			Namespace:       b.namespace,
			Satellite:       w.Satellite,
			NoradID:         w.NoradID,
			FrequencyMHz:    w.FrequencyMHz,
			Start:           w.Start.UTC(),
			Culmination:     w.Culmination.UTC(),
			End:             w.End.UTC(),
			DurationSeconds: w.DurationSeconds,
			MaxElevation:    w.MaxElevation,
			SleepSeconds:    SleepSeconds(w.Start, now),
			Station:         w.Station,
		})
	}
	return descs
}

// Slug lowercases a satellite name and replaces spaces with hyphens,
// yielding the fragment used in object names and labels.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// JobName builds the deterministic object name
// record-<satellite-slug>-<MMDD-HHMM>-<3-digit-sequence>, with the time
// part taken from the pass start in UTC.
func JobName(satellite string, start time.Time, seq int) string {
	return fmt.Sprintf("record-%s-%s-%03d", Slug(satellite), start.UTC().Format("0102-1504"), seq)
}

// SleepSeconds is the whole-second wait between now and the window start,
// clamped at zero for passes already under way.
func SleepSeconds(start, now time.Time) int64 {
	secs := int64(math.Floor(start.Sub(now).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}
