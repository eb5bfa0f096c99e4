// Predictor computes upcoming satellite passes for every configured ground
// station and creates one Kubernetes Job per pass to record it.
//
// It runs to completion: load elements, predict, submit, exit. A CronJob
// or systemd timer owns the cadence. Shutdown is handled gracefully on
// SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/HenrINC/sat-cluster-predictor/internal/app"
	"github.com/HenrINC/sat-cluster-predictor/internal/config"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", config.Path(), "Path to config file (TOML or YAML)")
		kubeconfig  = pflag.String("kubeconfig", "", "Path to kubeconfig (default: in-cluster, then ~/.kube/config)")
		dryRun      = pflag.Bool("dry-run", false, "Predict and print but do not create jobs")
		showVersion = pflag.Bool("version", false, "Print version and exit")
	)
	pflag.Parse()

	if *showVersion {
		fmt.Printf("predictor %s (%s, built %s)\n", app.Version, app.GoVersion, app.BuiltAt)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger := log.New(os.Stdout, "predictor ", log.LstdFlags|log.Lmicroseconds)

	a := app.New(app.Options{
		Logger:     logger,
		Cfg:        cfg,
		DryRun:     *dryRun,
		Kubeconfig: *kubeconfig,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := a.Run(ctx); err != nil {
		logger.Fatalf("predictor failed: %v", err)
	}

	// Brief pause so in-flight log writes can flush before exit.
	time.Sleep(50 * time.Millisecond)
}
