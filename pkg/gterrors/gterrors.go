// Package gterrors defines the typed error taxonomy used across the
// genotyping core: fatal input/build errors, fatal index-load errors, fatal
// sample-roster conflicts, and soft budget-exceeded events which callers
// accumulate into run statistics rather than abort on.
package gterrors

import "fmt"

// MalformedInputError is returned when a graph-build input is not well
// formed: an unknown contig, a variant position beyond the end of a contig,
// or a non-ACGTN base in a reference allele.
type MalformedInputError struct {
	Contig string
	Pos    uint32
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input at %s:%d: %s", e.Contig, e.Pos, e.Reason)
}

// IndexMismatchError is returned by kmerindex.Load when an index file's
// contig checksum differs from the one expected for the graph it is being
// attached to. The index's K is read from the file and is not compared
// against anything.
type IndexMismatchError struct {
	Reason string
}

func (e *IndexMismatchError) Error() string {
	return fmt.Sprintf("index mismatch: %s", e.Reason)
}

// RosterConflictError is returned when a read group maps to two different
// sample names while building a sample roster.
type RosterConflictError struct {
	ReadGroup string
	Sample1   string
	Sample2   string
}

func (e *RosterConflictError) Error() string {
	return fmt.Sprintf("read group %q maps to both sample %q and sample %q", e.ReadGroup, e.Sample1, e.Sample2)
}

// BudgetExceededKind enumerates the soft, per-read budgets the core may
// trip. Tripping one never aborts the region; pkg/align drops only the
// k-mer lookup that tripped it and keeps aligning the read with its other
// seeds.
type BudgetExceededKind int

const (
	// TooManyKmerLabels is tripped when a k-mer query would return more
	// labels than Options.MaxIndexLabels.
	TooManyKmerLabels BudgetExceededKind = iota
	// TooManyHaplotypes is tripped when a region's bubbles would need more
	// haplotype indices than Options.MaxNumberOfHaplotypes can represent.
	TooManyHaplotypes
	// RareKmerExceeded is tripped when a read's rarest k-mer still exceeds
	// Options.MaxUniqueKmerPositions.
	RareKmerExceeded
)

func (k BudgetExceededKind) String() string {
	switch k {
	case TooManyKmerLabels:
		return "too-many-kmer-labels"
	case TooManyHaplotypes:
		return "too-many-haplotypes"
	case RareKmerExceeded:
		return "rare-kmer-exceeded"
	default:
		return "unknown-budget"
	}
}

// BudgetExceededError is a soft error: the region continues, the offending
// k-mer lookup contributes no labels (the rest of the read is still
// aligned), and the caller is expected to increment a counter for run
// statistics.
type BudgetExceededError struct {
	Kind BudgetExceededKind
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: %s", e.Kind)
}

// RunStats accumulates the soft errors absorbed during a region's
// genotyping pass, for reporting at region end.
type RunStats struct {
	TooManyKmerLabelsCount int
	TooManyHaplotypesCount int
	RareKmerExceededCount  int
}

// Record folds a BudgetExceededError into the running counters.
func (s *RunStats) Record(err *BudgetExceededError) {
	switch err.Kind {
	case TooManyKmerLabels:
		s.TooManyKmerLabelsCount++
	case TooManyHaplotypes:
		s.TooManyHaplotypesCount++
	case RareKmerExceeded:
		s.RareKmerExceededCount++
	}
}
