// Passctl is the command-line companion for the pass predictor. It computes
// predictions locally from the same configuration the predictor uses and
// renders them to the terminal, without needing anything deployed.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/ctl"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", config.Path(), "Path to config file (TOML or YAML)")
		jsonOut    = pflag.Bool("json", false, "Output raw JSON instead of formatted text")
		verbose    = pflag.BoolP("verbose", "v", false, "Show pipeline logs on stderr")
	)

	// Stop parsing global flags at the first non-flag argument (the command
	// name), so subcommand-specific flags like --count are not rejected.
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cmd := pflag.Arg(0)
	subArgs := pflag.Args()[1:]

	// validate is the one command that must not load the config up front;
	// reporting the load error is its whole job.
	if cmd == "validate" {
		if err := ctl.Validate(*configPath, *jsonOut); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "passctl ", log.LstdFlags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "passes":
		opts := ctl.PassesOptions{JSON: *jsonOut}
		passFlags := pflag.NewFlagSet("passes", pflag.ContinueOnError)
		passFlags.IntVar(&opts.Count, "count", 0, "Limit number of passes shown")
		passFlags.StringVar(&opts.Satellite, "satellite", "", "Filter by satellite name")
		passFlags.StringVar(&opts.Station, "station", "", "Filter by ground station name")
		_ = passFlags.Parse(subArgs)
		err = ctl.Passes(ctx, cfg, logger, opts)

	case "jobs":
		opts := ctl.JobsOptions{JSON: *jsonOut}
		jobFlags := pflag.NewFlagSet("jobs", pflag.ContinueOnError)
		jobFlags.IntVar(&opts.Count, "count", 0, "Limit number of jobs shown")
		jobFlags.BoolVar(&opts.Manifests, "manifests", false, "Print full Job manifests as JSON")
		jobFlags.BoolVar(&opts.Submit, "submit", false, "Actually create the jobs in the cluster")
		jobFlags.StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig for --submit")
		_ = jobFlags.Parse(subArgs)
		err = ctl.Jobs(ctx, cfg, logger, opts)

	case "satellites":
		err = ctl.Satellites(cfg, *jsonOut)

	case "tle-info":
		err = ctl.TLEInfo(cfg, *jsonOut)

	case "tle-refresh":
		err = ctl.TLERefresh(ctx, cfg, logger, *jsonOut)

	case "config":
		err = ctl.ShowConfig(cfg, *jsonOut)

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Print(`
  passctl — satellite pass predictor CLI

  USAGE
    passctl [flags] <command> [command-flags]

  COMMANDS
    passes          Predict and list upcoming satellite passes
    jobs            Show the recording jobs the catalog would produce
    satellites      List the configured satellite catalog
    tle-info        Show element cache status and freshness
    tle-refresh     Force an element fetch from the configured sources
    config          Show the resolved configuration
    validate        Check that the configuration file is usable

  GLOBAL FLAGS
    -c, --config PATH   Config file (default: ` + config.DefaultPath + `, $CONFIG_PATH overrides)
        --json          Output raw JSON instead of formatted text
    -v, --verbose       Show pipeline logs on stderr

  COMMAND FLAGS
    passes:
        --count N           Limit number of passes shown
        --satellite NAME    Filter by satellite name
        --station NAME      Filter by ground station name

    jobs:
        --count N           Limit number of jobs shown
        --manifests         Print full Job manifests as JSON
        --submit            Actually create the jobs in the cluster
        --kubeconfig PATH   Kubeconfig for --submit

  EXAMPLES
    passctl passes
    passctl passes --satellite "NOAA 19" --count 5
    passctl --json passes --station oslo
    passctl jobs
    passctl jobs --manifests
    passctl jobs --submit
    passctl tle-refresh
    passctl tle-info
    passctl validate

`)
}
