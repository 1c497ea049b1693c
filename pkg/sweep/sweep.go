// Package sweep measures how often the lattice attack recovers a key as the
// nonce size and the number of signatures vary.
//
// A Runner walks the configured bit-lengths in order. For each one it raises
// the signature count from MinSignatures until MaxSignatures or until the stop
// policy fires, running Trials independent trials per cell:
//
//	cfg := sweep.DefaultConfig()
//	cfg.Seed = "experiment-1"
//	runner, err := sweep.NewRunner(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := runner.Run(ctx)
//	report.WriteTable(os.Stdout)
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mahdiidarabi/cubicpell-nonce/internal/rng"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/pellattack"
)

// Runner executes sweeps.
type Runner struct {
	config      Config
	group       group.Group
	hash        *pellattack.HashOracle
	attack      *pellattack.LatticeAttack
	latticeOpts []pellattack.LatticeOption
	rand        io.Reader
	logger      zerolog.Logger
	onCell      func(Cell)
}

// Option configures a Runner.
type Option func(*Runner)

// WithGroup runs trials in g instead of CP256-1299.
func WithGroup(g group.Group) Option {
	return func(r *Runner) { r.group = g }
}

// WithRand makes every trial read from random. The reader is shared between
// workers, so the run is not reproducible even if random is deterministic.
func WithRand(random io.Reader) Option {
	return func(r *Runner) { r.rand = rng.NewLockedReader(random) }
}

// WithLogger sets the logger for per-cell progress.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithLatticeOptions configures the attack each trial runs.
func WithLatticeOptions(opts ...pellattack.LatticeOption) Option {
	return func(r *Runner) { r.latticeOpts = append(r.latticeOpts, opts...) }
}

// WithCellHook calls fn after each completed cell.
func WithCellHook(fn func(Cell)) Option {
	return func(r *Runner) { r.onCell = fn }
}

// NewRunner validates cfg and builds a runner.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		config: cfg,
		group:  group.CP256(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	digest := cfg.Digest
	if digest == "" {
		digest = pellattack.DigestSHA256
	}
	hash, err := pellattack.NewHashOracle(digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	r.hash = hash
	r.attack = pellattack.NewLatticeAttack(r.group, r.latticeOpts...)
	return r, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config { return r.config }

// Run sweeps every bit-length and returns the table of cells run so far.
// Only cancellation of ctx stops a sweep early; the partial report is
// returned together with the context error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{
		Group:  r.group.Name(),
		Digest: string(r.hash.Digest()),
		Seed:   r.config.Seed,
	}
	defer func() { report.Elapsed = time.Since(start) }()

	for _, bits := range r.config.BitLengths {
		for count := r.config.MinSignatures; count <= r.config.MaxSignatures; count++ {
			cell, err := r.RunCell(ctx, bits, count)
			if err != nil {
				return report, err
			}
			report.Add(cell)
			if r.config.Stop.ShouldStop(bits, cell.Rate) {
				r.logger.Debug().Int("bits", bits).Int("signatures", count).Float64("rate", cell.Rate).Msg("stop policy reached")
				break
			}
		}
	}
	return report, nil
}

// RunCell runs the configured number of trials for one cell. Trial errors are
// counted as failures; the returned error is non-nil only when ctx ends.
func (r *Runner) RunCell(ctx context.Context, bits, count int) (Cell, error) {
	cell := Cell{Bits: bits, Signatures: count, Trials: r.config.Trials}
	if err := ctx.Err(); err != nil {
		return cell, err
	}

	workers := r.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	var successes, errs int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for trial := 0; trial < r.config.Trials; trial++ {
		trial := trial
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := r.runTrial(gctx, bits, count, trial)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				atomic.AddInt64(&errs, 1)
				r.logger.Debug().Err(err).Int("bits", bits).Int("signatures", count).Int("trial", trial).Msg("trial failed")
				return nil
			}
			if ok {
				atomic.AddInt64(&successes, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return cell, err
		}
		return cell, fmt.Errorf("sweep cell %d/%d: %w", bits, count, err)
	}

	cell.Successes = int(successes)
	cell.Errors = int(errs)
	cell.Failures = cell.Trials - cell.Successes
	cell.Rate = successRate(cell.Successes, cell.Trials)
	cell.Elapsed = time.Since(start)

	r.logger.Info().
		Int("bits", bits).
		Int("signatures", count).
		Int("successes", cell.Successes).
		Int("errors", cell.Errors).
		Float64("rate", cell.Rate).
		Dur("elapsed", cell.Elapsed).
		Msg("cell finished")
	if r.onCell != nil {
		r.onCell(cell)
	}
	return cell, nil
}
