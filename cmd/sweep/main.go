package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/mahdiidarabi/cubicpell-nonce/internal/logger"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/pellattack"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/sweep"
)

func main() {
	var (
		configFile = flag.String("config", "", "JSON sweep configuration (flags below override it)")
		bitLengths = flag.String("bits", "", "Nonce bit-lengths, comma separated")
		minSigs    = flag.Int("min-signatures", 0, "Smallest signature count")
		maxSigs    = flag.Int("max-signatures", 0, "Largest signature count")
		trials     = flag.Int("trials", 0, "Trials per cell")
		workers    = flag.Int("workers", 0, "Number of parallel workers (0 = auto-detect based on CPU cores)")
		seed       = flag.String("seed", "", "Seed for a reproducible run")
		digest     = flag.String("digest", "", "Signature hash (sha256, sha3-256, blake3, sha512)")
		groupName  = flag.String("group", "cp256", "Group to run trials in ("+strings.Join(group.Names(), ", ")+")")
		timeout    = flag.Duration("trial-timeout", 0, "Per-trial lattice timeout (0 = none)")
		noStop     = flag.Bool("no-stop", false, "Run every signature count regardless of success rate")
		jsonOut    = flag.String("json", "", "Write the report as JSON to this path")
		cborOut    = flag.String("cbor", "", "Write the report as CBOR to this path")
		chartOut   = flag.String("chart", "", "Write an HTML success-rate chart to this path")
		logLevel   = flag.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
		pretty     = flag.Bool("pretty", false, "Human-readable log output")
	)
	flag.Parse()

	logCfg := logger.DefaultConfig()
	logCfg.Level = *logLevel
	logCfg.Pretty = *pretty
	log := logger.New(logCfg)

	cfg := sweep.DefaultConfig()
	if *configFile != "" {
		loaded, err := sweep.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *bitLengths != "" {
		bits, err := parseList(*bitLengths)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing bits: %v\n", err)
			os.Exit(1)
		}
		cfg.BitLengths = bits
	}
	if *minSigs > 0 {
		cfg.MinSignatures = *minSigs
	}
	if *maxSigs > 0 {
		cfg.MaxSignatures = *maxSigs
	}
	if *trials > 0 {
		cfg.Trials = *trials
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *seed != "" {
		cfg.Seed = *seed
	}
	if *digest != "" {
		cfg.Digest = pellattack.Digest(*digest)
	}
	if *timeout > 0 {
		cfg.TrialTimeout = sweep.Duration(*timeout)
	}
	if *noStop {
		cfg.Stop.Disabled = true
	}

	g, err := group.ByName(*groupName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	runner, err := sweep.NewRunner(cfg, sweep.WithGroup(g), sweep.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().
		Str("group", g.Name()).
		Ints("bits", cfg.BitLengths).
		Int("trials", cfg.Trials).
		Msg("starting sweep")

	report, runErr := runner.Run(ctx)
	if runErr != nil {
		log.Warn().Err(runErr).Int("cells", len(report.Cells)).Msg("sweep interrupted, writing partial report")
	}

	if err := report.WriteTable(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := writeOutputs(report, *jsonOut, *cborOut, *chartOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Info().Dur("elapsed", report.Elapsed.Round(time.Millisecond)).Msg("sweep finished")

	if runErr != nil {
		os.Exit(1)
	}
}

func writeOutputs(report *sweep.Report, jsonPath, cborPath, chartPath string) error {
	if jsonPath != "" {
		if err := writeFile(jsonPath, report.WriteJSON); err != nil {
			return err
		}
	}
	if cborPath != "" {
		data, err := report.MarshalBinary()
		if err != nil {
			return err
		}
		if err := os.WriteFile(cborPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", cborPath, err)
		}
	}
	if chartPath != "" {
		if err := writeFile(chartPath, func(w io.Writer) error { return sweep.RenderChart(w, report) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return writeAndClose(path, f, write)
}

// writeAndClose runs write on wc and closes it. A failed Close is reported
// when write itself succeeded.
func writeAndClose(path string, wc io.WriteCloser, write func(io.Writer) error) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := write(wc); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func parseList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
