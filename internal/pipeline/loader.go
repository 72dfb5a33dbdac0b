package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/dataloader/internal/logger"
	"github.com/born-ml/dataloader/internal/tensor"
)

// Batch is one collated batch: a tensor per field, all with the same
// leading batch dimension.
type Batch struct {
	Index  int
	Seed   uint64
	Fields map[string]*tensor.RawTensor
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	BatchSize int           // Planned (maximum) samples per batch.
	Workers   int           // Batches processed concurrently. 0 = 1.
	Seed      uint64        // Base seed; per-batch seeds are derived from it.
	Logger    logger.Logger // nil = logger.Discard().
}

type fieldProgram struct {
	name    string
	program *Program
}

// Loader plans, compiles and runs one pipeline per field.
type Loader struct {
	cfg    LoaderConfig
	fields []fieldProgram
	arenas *ArenaPool
	log    logger.Logger
}

// NewLoader plans and compiles every pipeline for cfg.BatchSize and
// allocates one arena per worker. Any precondition failure is returned here,
// before a single batch runs.
func NewLoader(cfg LoaderConfig, pipelines ...*Pipeline) (*Loader, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	l := &Loader{cfg: cfg, log: log}

	var slots []Slot
	seen := make(map[string]bool, len(pipelines))
	for _, p := range pipelines {
		if seen[p.Name()] {
			return nil, fmt.Errorf("duplicate pipeline for field %q", p.Name())
		}
		seen[p.Name()] = true

		plan, err := p.Plan(cfg.BatchSize)
		if err != nil {
			return nil, err
		}
		program, err := plan.Compile()
		if err != nil {
			return nil, err
		}

		l.fields = append(l.fields, fieldProgram{name: p.Name(), program: program})
		slots = append(slots, plan.Slots()...)

		log.Info("pipeline planned",
			"field", p.Name(),
			"stages", len(plan.Stages),
			"slots", len(plan.Slots()),
			"out_shape", plan.Final.Shape,
			"out_dtype", plan.Final.DType.String())
	}

	arenas, err := NewArenaPool(cfg.Workers, cfg.BatchSize, slots)
	if err != nil {
		return nil, err
	}
	l.arenas = arenas

	return l, nil
}

// Plans returns the plan of every field, in registration order.
func (l *Loader) Plans() []*Plan {
	plans := make([]*Plan, len(l.fields))
	for i, f := range l.fields {
		plans[i] = f.program.Plan()
	}
	return plans
}

// BatchSeed derives the seed for batch index of the given epoch.
// Seeds are distinct for every (epoch, index) pair with index < 2^32.
func BatchSeed(base uint64, epoch, index int) uint64 {
	return base + uint64(epoch)<<32 + uint64(index)
}

// Process runs every field pipeline on in using arena. All fields receive
// in.Seed. Fields without a pipeline pass through unchanged.
func (l *Loader) Process(in Batch, arena *Arena) (Batch, error) {
	out := Batch{
		Index:  in.Index,
		Seed:   in.Seed,
		Fields: make(map[string]*tensor.RawTensor, len(in.Fields)),
	}
	for name, t := range in.Fields {
		out.Fields[name] = t
	}

	for _, f := range l.fields {
		t, ok := in.Fields[f.name]
		if !ok {
			return Batch{}, fmt.Errorf("batch %d: %w: %q", in.Index, ErrMissingField, f.name)
		}
		res, err := f.program.Run(in.Seed, t, arena)
		if err != nil {
			return Batch{}, fmt.Errorf("batch %d: %w", in.Index, err)
		}
		out.Fields[f.name] = res
	}
	return out, nil
}

// Run processes batches for one epoch with up to cfg.Workers batches in
// flight. Each batch gets Seed = BatchSeed(cfg.Seed, epoch, batch.Index).
//
// Field tensors in batches may be modified in place (ImageMixup blends its
// input), so callers must build fresh batches for every epoch.
//
// consume is called with the processed batch while the worker still owns its
// arena: outputs that live in the arena are only valid until consume returns.
// consume may be called concurrently. The first error cancels the run;
// failed batches are not retried.
func (l *Loader) Run(ctx context.Context, epoch int, batches []Batch, consume func(Batch) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Workers)

	start := time.Now()
	for _, b := range batches {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			arena, err := l.arenas.Acquire(gctx)
			if err != nil {
				return err
			}
			defer l.arenas.Release(arena)

			b.Seed = BatchSeed(l.cfg.Seed, epoch, b.Index)
			out, err := l.Process(b, arena)
			if err != nil {
				return err
			}
			l.log.Debug("batch processed", "epoch", epoch, "batch", b.Index, "seed", b.Seed)
			return consume(out)
		})
	}

	if err := g.Wait(); err != nil {
		l.log.Error("epoch aborted", "epoch", epoch, "error", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.log.Info("epoch complete", "epoch", epoch, "batches", len(batches), "elapsed", time.Since(start))
	return nil
}
