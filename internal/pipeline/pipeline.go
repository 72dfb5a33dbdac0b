package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/born-ml/dataloader/internal/tensor"
)

// Pipeline is an ordered list of operations applied to one batch field.
type Pipeline struct {
	name    string
	initial State
	ops     []Operation
}

// New creates a pipeline for the named field. initial describes the data
// entering the first operation.
func New(name string, initial State, ops ...Operation) *Pipeline {
	return &Pipeline{
		name:    name,
		initial: initial.WithSample(initial.Shape, initial.DType),
		ops:     append([]Operation(nil), ops...),
	}
}

// Name returns the field this pipeline processes.
func (p *Pipeline) Name() string {
	return p.name
}

// PlannedStage is one operation after planning.
type PlannedStage struct {
	ID    uuid.UUID
	Name  string
	In    State
	Out   State
	Query *AllocationQuery

	op Operation
}

// Plan is the result of calling DeclareStateAndMemory on every operation.
type Plan struct {
	Pipeline  string
	BatchSize int
	Stages    []PlannedStage
	Final     State
}

// Plan threads the pipeline state through every operation in order.
// The first failing operation aborts planning; the error wraps the
// operation's own error so errors.Is(err, ErrPrecondition) works.
func (p *Pipeline) Plan(batchSize int) (*Plan, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("pipeline %q: batch size must be >= 1, got %d", p.name, batchSize)
	}

	plan := &Plan{
		Pipeline:  p.name,
		BatchSize: batchSize,
		Stages:    make([]PlannedStage, 0, len(p.ops)),
	}

	state := p.initial
	for i, op := range p.ops {
		next, query, err := op.DeclareStateAndMemory(state)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: stage %d (%s): %w", p.name, i, OperationName(op), err)
		}
		if query != nil {
			q := AllocationQuery{Shape: query.Shape.Clone(), DType: query.DType}
			if err := q.BatchShape(batchSize).Validate(); err != nil {
				return nil, fmt.Errorf("pipeline %q: stage %d (%s): invalid allocation: %w", p.name, i, OperationName(op), err)
			}
			query = &q
		}

		plan.Stages = append(plan.Stages, PlannedStage{
			ID:    uuid.New(),
			Name:  OperationName(op),
			In:    state,
			Out:   next,
			Query: query,
			op:    op,
		})
		state = next
	}
	plan.Final = state

	return plan, nil
}

// Slots returns the arena slots this plan needs, in stage order.
func (pl *Plan) Slots() []Slot {
	var slots []Slot
	for _, s := range pl.Stages {
		if s.Query != nil {
			slots = append(slots, Slot{ID: s.ID, Query: *s.Query})
		}
	}
	return slots
}

// Compile generates the transform of every planned stage.
func (pl *Plan) Compile() (*Program, error) {
	transforms := make([]Transform, len(pl.Stages))
	for i, s := range pl.Stages {
		fn := s.op.GenerateCode()
		if fn == nil {
			return nil, fmt.Errorf("pipeline %q: stage %d (%s) generated no code", pl.Pipeline, i, s.Name)
		}
		transforms[i] = fn
	}
	return &Program{plan: pl, transforms: transforms}, nil
}

// StageSummary is the serialisable form of a planned stage.
type StageSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	InShape    []int  `json:"in_shape"`
	InDType    string `json:"in_dtype"`
	OutShape   []int  `json:"out_shape"`
	OutDType   string `json:"out_dtype"`
	AllocShape []int  `json:"alloc_shape,omitempty"`
	AllocDType string `json:"alloc_dtype,omitempty"`
	AllocBytes int    `json:"alloc_bytes,omitempty"`
}

// Summary is the serialisable form of a Plan.
type Summary struct {
	Pipeline  string         `json:"pipeline"`
	BatchSize int            `json:"batch_size"`
	Stages    []StageSummary `json:"stages"`
}

// Describe returns a summary suitable for JSON output.
func (pl *Plan) Describe() Summary {
	sum := Summary{Pipeline: pl.Pipeline, BatchSize: pl.BatchSize}
	for _, s := range pl.Stages {
		ss := StageSummary{
			ID:       s.ID.String(),
			Name:     s.Name,
			InShape:  s.In.Shape,
			InDType:  s.In.DType.String(),
			OutShape: s.Out.Shape,
			OutDType: s.Out.DType.String(),
		}
		if s.Query != nil {
			ss.AllocShape = s.Query.BatchShape(pl.BatchSize)
			ss.AllocDType = s.Query.DType.String()
			ss.AllocBytes = s.Query.ByteSize(pl.BatchSize)
		}
		sum.Stages = append(sum.Stages, ss)
	}
	return sum
}

// Program is a compiled plan, ready to run batches.
type Program struct {
	plan       *Plan
	transforms []Transform
}

// Plan returns the plan this program was compiled from.
func (pr *Program) Plan() *Plan {
	return pr.plan
}

// Run pushes one batch through every stage in order.
//
// Each stage receives its planned input State with RandomSeed = seed and its
// arena slot narrowed to the live batch size. arena may be nil only if no
// stage declared an AllocationQuery. Batches larger than the planned batch
// size are rejected rather than truncated.
func (pr *Program) Run(seed uint64, batch *tensor.RawTensor, arena *Arena) (*tensor.RawTensor, error) {
	if batch == nil {
		return nil, fmt.Errorf("pipeline %q: nil batch", pr.plan.Pipeline)
	}
	n := batch.BatchSize()
	if n > pr.plan.BatchSize {
		return nil, &MismatchError{
			Op:   pr.plan.Pipeline,
			What: "batch size",
			Want: fmt.Sprintf("<= %d", pr.plan.BatchSize),
			Got:  n,
			Kind: ErrShapeMismatch,
		}
	}

	out := batch
	for i, s := range pr.plan.Stages {
		var dst *tensor.RawTensor
		if s.Query != nil {
			if arena == nil {
				return nil, fmt.Errorf("pipeline %q: stage %d (%s) needs an arena", pr.plan.Pipeline, i, s.Name)
			}
			slot, ok := arena.Slot(s.ID)
			if !ok {
				return nil, fmt.Errorf("pipeline %q: arena has no slot for stage %d (%s)", pr.plan.Pipeline, i, s.Name)
			}
			view, err := slot.Narrow(n)
			if err != nil {
				return nil, fmt.Errorf("pipeline %q: stage %d (%s): %w", pr.plan.Pipeline, i, s.Name, err)
			}
			dst = view
		}

		next, err := pr.transforms[i](s.In.WithSeed(seed), out, dst)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: stage %d (%s): %w", pr.plan.Pipeline, i, s.Name, err)
		}
		out = next
	}
	return out, nil
}
