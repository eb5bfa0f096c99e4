package ctl

import (
	"fmt"
	"strings"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/elements"
)

// Satellites lists the configured satellite catalog and whether cached
// elements cover each entry.
func Satellites(cfg config.Config, jsonOutput bool) error {
	set, _, err := elements.NewCache(cfg.Elements.CachePath).Load()
	if err != nil {
		set = nil
	}

	type satStatus struct {
		Name         string  `json:"name"`
		NoradID      int     `json:"norad_id"`
		FrequencyMHz float64 `json:"frequency_mhz"`
		HasElements  bool    `json:"has_elements"`
		Epoch        string  `json:"epoch,omitempty"`
	}

	sats := make([]satStatus, len(cfg.Satellites))
	for i, s := range cfg.Satellites {
		st := satStatus{Name: s.Name, NoradID: s.NoradID, FrequencyMHz: s.FrequencyMHz}
		if el, ok := set.ByNoradID(s.NoradID); ok {
			st.HasElements = true
			st.Epoch = el.Epoch.Format("2006-01-02")
		}
		sats[i] = st
	}

	if jsonOutput {
		return printJSON(map[string]any{"satellites": sats})
	}

	fmt.Println()
	fmt.Println(header("  SATELLITE CATALOG"))
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 56)))
	fmt.Printf("  %-14s %-10s %-14s %s\n",
		colorize(dim, "Name"),
		colorize(dim, "NORAD ID"),
		colorize(dim, "Frequency"),
		colorize(dim, "Elements"),
	)
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 56)))

	for _, s := range sats {
		status := colorize(red, "missing")
		if s.HasElements {
			status = colorize(green, "epoch "+s.Epoch)
		}
		fmt.Printf("  %-14s %-10d %-14s %s\n",
			colorize(bold, s.Name),
			s.NoradID,
			fmt.Sprintf("%.4f MHz", s.FrequencyMHz),
			status,
		)
	}
	fmt.Println()
	return nil
}
