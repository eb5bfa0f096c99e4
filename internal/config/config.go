// Package config handles loading, defaulting, and validation of the
// predictor configuration file. Both TOML and YAML are accepted, chosen by
// file extension. Every section maps to a typed struct so the rest of the
// codebase gets strong typing without manual key lookups.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when the CONFIG_PATH
// environment variable is not set. Matches the mount point of the cluster
// ConfigMap.
const DefaultPath = "/config/config.yml"

// Path returns the configuration file path, honoring CONFIG_PATH.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Config is the top-level configuration, mirroring the file sections.
type Config struct {
	Prediction     PredictionConfig `toml:"prediction" yaml:"prediction" json:"prediction"`
	Elements       ElementsConfig   `toml:"elements"   yaml:"elements"   json:"elements"`
	Jobs           JobsConfig       `toml:"jobs"       yaml:"jobs"       json:"jobs"`
	Metrics        MetricsConfig    `toml:"metrics"    yaml:"metrics"    json:"metrics"`
	GroundStations []GroundStation  `toml:"ground_stations" yaml:"ground_stations" json:"ground_stations"`
	Satellites     []Satellite      `toml:"satellites" yaml:"satellites" json:"satellites"`
}

type PredictionConfig struct {
	// Days is the length of the prediction horizon starting at run time.
	Days int `toml:"days" yaml:"days" json:"days"`
	// StepSeconds is the coarse sampling interval of the elevation curve.
	StepSeconds int `toml:"step_seconds" yaml:"step_seconds" json:"step_seconds"`
	// RefineToleranceSeconds bounds the interval to which event times are
	// narrowed by the root-finding passes.
	RefineToleranceSeconds int `toml:"refine_tolerance_seconds" yaml:"refine_tolerance_seconds" json:"refine_tolerance_seconds"`
	// Workers caps concurrent (station, satellite) pair computations.
	// Zero means one worker per CPU.
	Workers int `toml:"workers" yaml:"workers" json:"workers"`
}

type ElementsConfig struct {
	Sources        []string `toml:"sources"         yaml:"sources"         json:"sources"`
	CachePath      string   `toml:"cache_path"      yaml:"cache_path"      json:"cache_path"`
	TimeoutSeconds int      `toml:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

type JobsConfig struct {
	Namespace     string          `toml:"namespace"      yaml:"namespace"      json:"namespace"`
	Image         string          `toml:"image"          yaml:"image"          json:"image"`
	Claim         string          `toml:"claim"          yaml:"claim"          json:"claim"`
	MountPath     string          `toml:"mount_path"     yaml:"mount_path"     json:"mount_path"`
	TTLSeconds    int32           `toml:"ttl_seconds"    yaml:"ttl_seconds"    json:"ttl_seconds"`
	BackoffLimit  int32           `toml:"backoff_limit"  yaml:"backoff_limit"  json:"backoff_limit"`
	SubmitWorkers int             `toml:"submit_workers" yaml:"submit_workers" json:"submit_workers"`
	Resources     ResourcesConfig `toml:"resources"      yaml:"resources"      json:"resources"`
}

type ResourcesConfig struct {
	RequestMemory string `toml:"request_memory" yaml:"request_memory" json:"request_memory"`
	RequestCPU    string `toml:"request_cpu"    yaml:"request_cpu"    json:"request_cpu"`
	LimitMemory   string `toml:"limit_memory"   yaml:"limit_memory"   json:"limit_memory"`
	LimitCPU      string `toml:"limit_cpu"      yaml:"limit_cpu"      json:"limit_cpu"`
}

type MetricsConfig struct {
	// TextfilePath, when set, receives the run's metrics in Prometheus
	// text exposition format (node_exporter textfile collector layout).
	TextfilePath string `toml:"textfile_path" yaml:"textfile_path" json:"textfile_path"`
}

type GroundStation struct {
	Name      string  `toml:"name"      yaml:"name"      json:"name"`
	Latitude  float64 `toml:"latitude"  yaml:"latitude"  json:"latitude"`
	Longitude float64 `toml:"longitude" yaml:"longitude" json:"longitude"`
	// Altitude is meters above the WGS-84 ellipsoid.
	Altitude float64 `toml:"altitude" yaml:"altitude" json:"altitude"`
	// MinElevation is the visibility threshold in degrees. Zero selects
	// the default of 10 degrees.
	MinElevation float64 `toml:"min_elevation" yaml:"min_elevation" json:"min_elevation"`
	// Satellites lists the NORAD catalog numbers tracked from this station.
	Satellites []int `toml:"satellites" yaml:"satellites" json:"satellites"`
}

type Satellite struct {
	Name    string `toml:"name" yaml:"name" json:"name"`
	NoradID int    `toml:"id"   yaml:"id"   json:"id"`
	// FrequencyMHz is the downlink frequency handed to recorder jobs.
	FrequencyMHz float64 `toml:"frequency_mhz" yaml:"frequency_mhz" json:"frequency_mhz"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the file omits a field. The satellite catalog defaults to
// the NOAA APT constellation; ground stations have no default and must be
// configured.
func Default() Config {
	return Config{
		Prediction: PredictionConfig{
			Days:                   3,
			StepSeconds:            30,
			RefineToleranceSeconds: 1,
			Workers:                0,
		},
		Elements: ElementsConfig{
			Sources: []string{
				"https://celestrak.org/NORAD/elements/gp.php?GROUP=weather&FORMAT=tle",
				"https://celestrak.org/NORAD/elements/gp.php?GROUP=noaa&FORMAT=tle",
			},
			CachePath:      "/data/current_tle.json",
			TimeoutSeconds: 30,
		},
		Jobs: JobsConfig{
			Namespace:     "recordings",
			Image:         "henriinc/recorder:latest",
			Claim:         "recordings-pvc",
			MountPath:     "/recordings",
			TTLSeconds:    3600,
			BackoffLimit:  1,
			SubmitWorkers: 4,
			Resources: ResourcesConfig{
				RequestMemory: "128Mi",
				RequestCPU:    "100m",
				LimitMemory:   "256Mi",
				LimitCPU:      "200m",
			},
		},
		Metrics: MetricsConfig{
			TextfilePath: "",
		},
		Satellites: []Satellite{
			{Name: "NOAA 15", NoradID: 25338, FrequencyMHz: 137.62},
			{Name: "NOAA 18", NoradID: 28654, FrequencyMHz: 137.9125},
			{Name: "NOAA 19", NoradID: 33591, FrequencyMHz: 137.1},
		},
	}
}

// Load reads the file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch ext := filepath.Ext(path); ext {
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension %q (want .toml, .yml or .yaml)", ext)
	}

	for i := range cfg.GroundStations {
		if cfg.GroundStations[i].MinElevation == 0 {
			cfg.GroundStations[i].MinElevation = 10
		}
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Prediction.Days < 1 {
		return errors.New("prediction.days must be >= 1")
	}
	if cfg.Prediction.StepSeconds < 1 {
		return errors.New("prediction.step_seconds must be >= 1")
	}
	if cfg.Prediction.RefineToleranceSeconds < 1 {
		return errors.New("prediction.refine_tolerance_seconds must be >= 1")
	}
	if cfg.Prediction.RefineToleranceSeconds > cfg.Prediction.StepSeconds {
		return errors.New("prediction.refine_tolerance_seconds must not exceed step_seconds")
	}
	if cfg.Prediction.Workers < 0 {
		return errors.New("prediction.workers must be >= 0")
	}
	if len(cfg.Elements.Sources) == 0 {
		return errors.New("elements.sources must list at least one URL")
	}
	if cfg.Elements.CachePath == "" {
		return errors.New("elements.cache_path must not be empty")
	}
	if cfg.Elements.TimeoutSeconds < 1 {
		return errors.New("elements.timeout_seconds must be >= 1")
	}
	if cfg.Jobs.Namespace == "" {
		return errors.New("jobs.namespace must not be empty")
	}
	if cfg.Jobs.Image == "" {
		return errors.New("jobs.image must not be empty")
	}
	if cfg.Jobs.TTLSeconds < 0 {
		return errors.New("jobs.ttl_seconds must be >= 0")
	}
	if cfg.Jobs.BackoffLimit < 0 {
		return errors.New("jobs.backoff_limit must be >= 0")
	}
	if cfg.Jobs.SubmitWorkers < 1 {
		return errors.New("jobs.submit_workers must be >= 1")
	}
	if len(cfg.GroundStations) == 0 {
		return errors.New("at least one ground station must be configured")
	}

	ids := make(map[int]string, len(cfg.Satellites))
	for i, sat := range cfg.Satellites {
		if sat.Name == "" {
			return fmt.Errorf("satellites[%d].name must not be empty", i)
		}
		if sat.NoradID <= 0 {
			return fmt.Errorf("satellites[%d] (%s): id must be > 0", i, sat.Name)
		}
		if sat.FrequencyMHz <= 0 {
			return fmt.Errorf("satellites[%d] (%s): frequency_mhz must be > 0", i, sat.Name)
		}
		if prev, dup := ids[sat.NoradID]; dup {
			return fmt.Errorf("satellites: id %d declared by both %q and %q", sat.NoradID, prev, sat.Name)
		}
		ids[sat.NoradID] = sat.Name
	}

	for i, st := range cfg.GroundStations {
		if st.Name == "" {
			return fmt.Errorf("ground_stations[%d].name must not be empty", i)
		}
		if st.Latitude < -90 || st.Latitude > 90 {
			return fmt.Errorf("ground_stations[%d] (%s): latitude must be between -90 and 90", i, st.Name)
		}
		if st.Longitude < -180 || st.Longitude > 180 {
			return fmt.Errorf("ground_stations[%d] (%s): longitude must be between -180 and 180", i, st.Name)
		}
		if st.MinElevation < 0 || st.MinElevation > 90 {
			return fmt.Errorf("ground_stations[%d] (%s): min_elevation must be between 0 and 90", i, st.Name)
		}
		if len(st.Satellites) == 0 {
			return fmt.Errorf("ground_stations[%d] (%s): satellites must list at least one id", i, st.Name)
		}
		for _, id := range st.Satellites {
			if _, ok := ids[id]; !ok {
				return fmt.Errorf("ground_stations[%d] (%s): unknown satellite id %d", i, st.Name, id)
			}
		}
	}

	return nil
}

// SatelliteByID looks up a satellite definition by NORAD catalog number.
func (c Config) SatelliteByID(id int) (Satellite, bool) {
	for _, sat := range c.Satellites {
		if sat.NoradID == id {
			return sat, true
		}
	}
	return Satellite{}, false
}

// Horizon is the prediction window length.
func (p PredictionConfig) Horizon() time.Duration {
	return time.Duration(p.Days) * 24 * time.Hour
}

// Step is the coarse sampling interval.
func (p PredictionConfig) Step() time.Duration {
	return time.Duration(p.StepSeconds) * time.Second
}

// Tolerance is the event refinement tolerance.
func (p PredictionConfig) Tolerance() time.Duration {
	return time.Duration(p.RefineToleranceSeconds) * time.Second
}

// Timeout is the per-request fetch timeout.
func (e ElementsConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}
