package ctl

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/predict"
)

// PassesOptions controls the passes command output.
type PassesOptions struct {
	Count     int
	Satellite string
	Station   string
	JSON      bool
}

// pairFailure is the JSON shape of one failed (station, satellite) pair.
type pairFailure struct {
	predict.Pair
	Error string `json:"error"`
}

// Passes predicts and lists upcoming satellite passes.
func Passes(ctx context.Context, cfg config.Config, logger *log.Logger, opts PassesOptions) error {
	cat, _, err := buildCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	windows := filterWindows(cat.Windows, opts.Satellite, opts.Station, opts.Count)

	if opts.JSON {
		fails := make([]pairFailure, 0, len(cat.Failures))
		for _, f := range cat.Failures {
			fails = append(fails, pairFailure{Pair: f.Pair, Error: f.Err.Error()})
		}
		return printJSON(map[string]any{
			"passes":   windows,
			"failures": fails,
		})
	}

	fmt.Println()
	fmt.Println(header("  UPCOMING PASSES"))
	fmt.Printf("  %s %dd horizon, %d stations, %d satellites\n",
		colorize(dim, "Scope:"),
		cfg.Prediction.Days, len(cfg.GroundStations), len(cfg.Satellites),
	)
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 88)))

	if len(windows) == 0 {
		fmt.Println(colorize(dim, "  No upcoming passes found."))
		fmt.Println()
		return nil
	}

	fmt.Printf("  %-4s %-12s %-10s %-22s %-22s %6s  %s\n",
		colorize(dim, "#"),
		colorize(dim, "Satellite"),
		colorize(dim, "Station"),
		colorize(dim, "AOS"),
		colorize(dim, "LOS"),
		colorize(dim, "Elev"),
		colorize(dim, "Duration"),
	)
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 88)))

	for i, w := range windows {
		fmt.Printf("  %-4d %-12s %-10s %-22s %-22s %5.1f°  %s\n",
			i+1,
			colorize(bold, w.Satellite),
			w.Station.Name,
			formatTime(w.Start),
			formatTime(w.End),
			w.MaxElevation,
			formatDuration(time.Duration(w.DurationSeconds)*time.Second),
		)
	}
	fmt.Println()

	if n := len(cat.Failures); n > 0 {
		fmt.Printf("  %s %d station/satellite pairs failed; run with --json for details\n",
			colorize(yellow, "warning:"), n)
		fmt.Println()
	}
	return nil
}

// filterWindows applies the satellite and station name filters, then the
// count limit, preserving catalog order.
func filterWindows(windows []predict.Window, satellite, station string, count int) []predict.Window {
	out := windows
	if satellite != "" {
		upper := strings.ToUpper(satellite)
		var filtered []predict.Window
		for _, w := range out {
			if strings.ToUpper(w.Satellite) == upper {
				filtered = append(filtered, w)
			}
		}
		out = filtered
	}
	if station != "" {
		lower := strings.ToLower(station)
		var filtered []predict.Window
		for _, w := range out {
			if strings.ToLower(w.Station.Name) == lower {
				filtered = append(filtered, w)
			}
		}
		out = filtered
	}
	if count > 0 && count < len(out) {
		out = out[:count]
	}
	return out
}
