// Package pipeline implements the two-phase operation contract used by
// dataloader stages and the driver that plans, compiles and runs them.
//
// # Contract
//
// Every stage implements Operation:
//
//   - DeclareStateAndMemory is called once while the pipeline is built. It
//     validates the incoming State, returns the State seen by the next stage
//     and optionally an AllocationQuery for a scratch buffer.
//   - GenerateCode is called once and returns a Transform that is invoked for
//     every batch.
//
// Planning failures (wrong stage, JIT mode disabled) abort construction
// before any batch is processed.
//
// # Memory
//
// Queries are fulfilled by an Arena: one contiguous buffer split into
// disjoint, fixed-shape slots keyed by the stage's identity. The arena is
// sized for the planned batch size and reused for every batch, so the
// steady state performs no allocation for destination buffers.
//
// # Randomness
//
// The driver supplies State.RandomSeed fresh for every batch. All fields of
// a batch (e.g. image and label) receive the same seed, which is how mixup
// keeps image and label permutations aligned without the operators
// referencing each other.
package pipeline
