package ctl

import (
	"context"
	"log"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/elements"
	"github.com/HenrINC/sat-cluster-predictor/internal/predict"
)

// buildCatalog loads elements and predicts passes for every configured
// pair, exactly like a predictor run would. Returns the catalog and the
// instant the horizon starts.
func buildCatalog(ctx context.Context, cfg config.Config, logger *log.Logger) (predict.Catalog, time.Time, error) {
	set, err := elements.NewSource(cfg.Elements, logger).Load(ctx)
	if err != nil {
		return predict.Catalog{}, time.Time{}, err
	}
	now := time.Now().UTC()
	cat := predict.NewEngine(cfg, logger).BuildCatalog(ctx, set, now)
	return cat, now, nil
}
