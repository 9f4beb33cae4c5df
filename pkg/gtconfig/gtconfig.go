// Package gtconfig holds the runtime-tunable options recognised by the
// genotyping core. It plays the role src/pipeline/runtime.go's Info struct
// plays for groot: a plain, serializable bag of knobs threaded explicitly
// through a Context rather than read from package globals.
package gtconfig

import "fmt"

// Options carries every tunable the genotyping core exposes as a runtime
// knob rather than a compile-time constant.
type Options struct {
	// K is the k-mer length used by the index. Must be <= 32 so a k-mer
	// key fits in a uint64 under 2-bit packing.
	K int

	// MaxIndexLabels is the per-k-mer label ceiling; a lookup that would
	// exceed it fails soft and returns no labels.
	MaxIndexLabels int

	// MaxReadLength is the upper bound used to cluster bubbles into
	// Haplotype clusters.
	MaxReadLength int

	// MaxNumberOfHaplotypes is the bit width of the explain/nums bitsets.
	MaxNumberOfHaplotypes int

	// OptimalInsertSize is the target insert size used by the pair
	// refiner.
	OptimalInsertSize uint32

	// MaxUniqueKmerPositions is carried with a default but is not read by
	// the aligner: no read is skipped on account of how common its k-mers
	// are.
	MaxUniqueKmerPositions int

	// AddAllVariants is carried with a default but is not read by
	// vgraph.BuildGraph, which always keeps non-overlapping variants as
	// separate bubbles and merges only overlapping ones.
	AddAllVariants bool

	// StatsDir is carried with a default but is not read anywhere; no
	// per-read details are retained whatever its value.
	StatsDir string

	// FilterOnInsertSize toggles the pair refiner's stricter
	// insert-size-based path pruning. The source carries this logic
	// disabled by default; this module preserves that default per the
	// open question in this module's design notes.
	FilterOnInsertSize bool

	// MaxInsertSizeThreshold is carried with a default but is not read;
	// FilterOnInsertSize pruning does not consult it.
	MaxInsertSizeThreshold uint32
}

// DefaultOptions returns the option set the CLI falls back to when no flags
// override it, mirroring the defaults cmd/index.go and cmd/call.go set on
// their cobra flags.
func DefaultOptions() *Options {
	return &Options{
		K:                      32,
		MaxIndexLabels:         64,
		MaxReadLength:          150,
		MaxNumberOfHaplotypes:  16,
		OptimalInsertSize:      400,
		MaxUniqueKmerPositions: 100,
		AddAllVariants:         false,
		StatsDir:               "",
		FilterOnInsertSize:     false,
		MaxInsertSizeThreshold: 100,
	}
}

// Validate checks the option set for internal consistency, the way
// indexParamCheck validates cobra flags before a run starts.
func (o *Options) Validate() error {
	if o.K <= 0 || o.K > 32 {
		return fmt.Errorf("gtconfig: K must be in (0, 32], got %d", o.K)
	}
	if o.MaxIndexLabels <= 0 {
		return fmt.Errorf("gtconfig: MaxIndexLabels must be positive, got %d", o.MaxIndexLabels)
	}
	if o.MaxReadLength <= 0 {
		return fmt.Errorf("gtconfig: MaxReadLength must be positive, got %d", o.MaxReadLength)
	}
	if o.MaxNumberOfHaplotypes <= 0 || o.MaxNumberOfHaplotypes > 64 {
		return fmt.Errorf("gtconfig: MaxNumberOfHaplotypes must be in (0, 64], got %d", o.MaxNumberOfHaplotypes)
	}
	return nil
}
