package ctl

import (
	"fmt"
	"strings"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
)

// ShowConfig displays the resolved configuration.
func ShowConfig(cfg config.Config, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(cfg)
	}

	fmt.Println()
	fmt.Println(header("  PREDICTOR CONFIGURATION"))
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 50)))

	section := func(name string) {
		fmt.Printf("\n  %s\n", colorize(bold, "["+name+"]"))
	}
	field := func(key string, val any) {
		fmt.Printf("    %-20s %v\n", colorize(dim, key+":"), val)
	}

	section("prediction")
	field("days", cfg.Prediction.Days)
	field("step_seconds", cfg.Prediction.StepSeconds)
	field("refine_tolerance_s", cfg.Prediction.RefineToleranceSeconds)
	field("workers", cfg.Prediction.Workers)

	section("elements")
	for _, src := range cfg.Elements.Sources {
		field("source", src)
	}
	field("cache_path", cfg.Elements.CachePath)
	field("timeout_seconds", cfg.Elements.TimeoutSeconds)

	section("jobs")
	field("namespace", cfg.Jobs.Namespace)
	field("image", cfg.Jobs.Image)
	field("claim", cfg.Jobs.Claim)
	field("mount_path", cfg.Jobs.MountPath)
	field("ttl_seconds", cfg.Jobs.TTLSeconds)
	field("backoff_limit", cfg.Jobs.BackoffLimit)
	field("submit_workers", cfg.Jobs.SubmitWorkers)

	if cfg.Metrics.TextfilePath != "" {
		section("metrics")
		field("textfile_path", cfg.Metrics.TextfilePath)
	}

	section("ground_stations")
	for _, st := range cfg.GroundStations {
		field(st.Name, fmt.Sprintf("%.4f, %.4f, %.0fm (min elev %.0f°, %d satellites)",
			st.Latitude, st.Longitude, st.Altitude, st.MinElevation, len(st.Satellites)))
	}

	section("satellites")
	for _, s := range cfg.Satellites {
		field(s.Name, fmt.Sprintf("NORAD %d at %.4f MHz", s.NoradID, s.FrequencyMHz))
	}

	fmt.Println()
	return nil
}

// Validate loads the configuration at path and reports whether it is usable.
func Validate(path string, jsonOutput bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(map[string]any{
			"ok":              true,
			"path":            path,
			"ground_stations": len(cfg.GroundStations),
			"satellites":      len(cfg.Satellites),
		})
	}

	fmt.Printf("%s %s: %d ground stations, %d satellites\n",
		colorize(green, "configuration OK"), path, len(cfg.GroundStations), len(cfg.Satellites))
	return nil
}
