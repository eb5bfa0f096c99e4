package ctl

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/elements"
)

type tleInfo struct {
	Path        string    `json:"path"`
	Exists      bool      `json:"exists"`
	Fresh       bool      `json:"fresh"`
	FetchedAt   time.Time `json:"fetched_at"`
	AgeSeconds  int       `json:"age_s"`
	Size        int64     `json:"size"`
	Satellites  int       `json:"satellites"`
	OldestEpoch time.Time `json:"oldest_epoch"`
	NewestEpoch time.Time `json:"newest_epoch"`
	Sources     []string  `json:"sources"`
}

// TLEInfo shows element cache status and freshness.
func TLEInfo(cfg config.Config, jsonOutput bool) error {
	info := tleInfo{
		Path:    cfg.Elements.CachePath,
		Sources: cfg.Elements.Sources,
	}

	if fi, err := os.Stat(info.Path); err == nil {
		info.Exists = true
		info.Size = fi.Size()
	}
	if info.Exists {
		if set, fetchedAt, err := elements.NewCache(info.Path).Load(); err == nil {
			info.FetchedAt = fetchedAt.UTC()
			info.AgeSeconds = int(time.Since(fetchedAt).Seconds())
			info.Fresh = time.Since(fetchedAt) < elements.StaleAfter
			info.Satellites = len(set)
			for _, el := range set {
				if info.OldestEpoch.IsZero() || el.Epoch.Before(info.OldestEpoch) {
					info.OldestEpoch = el.Epoch
				}
				if el.Epoch.After(info.NewestEpoch) {
					info.NewestEpoch = el.Epoch
				}
			}
		}
	}

	if jsonOutput {
		return printJSON(info)
	}

	fmt.Println()
	fmt.Println(header("  ELEMENT CACHE INFO"))
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 50)))
	fmt.Printf("  Cache file: %s\n", info.Path)

	if !info.Exists {
		fmt.Printf("  Status:     %s\n", colorize(red, "NOT FOUND"))
		for _, src := range info.Sources {
			fmt.Printf("  Source:     %s\n", src)
		}
		fmt.Println()
		return nil
	}

	if info.Fresh {
		fmt.Printf("  Status:     %s\n", colorize(green, "FRESH"))
	} else {
		fmt.Printf("  Status:     %s\n", colorize(yellow, "STALE"))
	}
	fmt.Printf("  Age:        %s\n", formatDuration(time.Duration(info.AgeSeconds)*time.Second))
	fmt.Printf("  Last fetch: %s\n", info.FetchedAt.Format(time.RFC3339))
	fmt.Printf("  Size:       %s\n", formatBytes(info.Size))
	fmt.Printf("  Satellites: %d\n", info.Satellites)
	if !info.OldestEpoch.IsZero() {
		fmt.Printf("  Epochs:     %s to %s\n",
			info.OldestEpoch.Format("2006-01-02"), info.NewestEpoch.Format("2006-01-02"))
	}
	for _, src := range info.Sources {
		fmt.Printf("  Source:     %s\n", src)
	}
	fmt.Println()
	return nil
}

// TLERefresh forces a live element fetch and rewrites the cache.
func TLERefresh(ctx context.Context, cfg config.Config, logger *log.Logger, jsonOutput bool) error {
	src := elements.NewSource(cfg.Elements, logger)
	set, err := src.Refresh(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(map[string]any{
			"ok":         true,
			"satellites": len(set),
			"cache":      src.CachePath(),
		})
	}

	fmt.Println()
	fmt.Printf("  %s  %d element sets cached at %s\n",
		colorize(green, "REFRESHED"), len(set), src.CachePath())
	fmt.Println()
	return nil
}
