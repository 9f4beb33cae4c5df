package align

import (
	"fmt"

	"github.com/popgraph/vgtyper/pkg/gtconfig"
	"github.com/popgraph/vgtyper/pkg/gterrors"
	"github.com/popgraph/vgtyper/pkg/kmerindex"
	"github.com/popgraph/vgtyper/pkg/seqio"
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

// seedStride is how many k-mer offsets share one minimizer seed.
const seedStride = 31

// mismatchBudget bounds how many substitutions a walk may accumulate before
// it is abandoned, floor(length/K) with a minimum of one.
func mismatchBudget(length, k int) int {
	if k <= 0 {
		return 1
	}
	budget := length / k
	if budget < 1 {
		budget = 1
	}
	return budget
}

// AlignRead walks read against g using idx to seed candidate start
// positions, trying the given orientation and its reverse complement as two
// independent candidates, and returns the one that wins compareGenotypePaths's
// tie-break. Neither candidate's paths are mixed into the other's: a read
// that happens to seed hits on both strands must commit to one. When the
// tie-break can't separate them the read yields no paths at all. stats may
// be nil; when given, every seed whose k-mer exceeds opts.MaxIndexLabels is
// folded into it instead of being silently dropped.
func AlignRead(g *vgraph.Graph, idx *kmerindex.Index, read *seqio.Read, opts *gtconfig.Options, stats *gterrors.RunStats) (*GenotypePaths, error) {
	maxMM := mismatchBudget(len(read.Seq), opts.K)

	fwd := &GenotypePaths{ReadName: string(read.ID), Length: len(read.Seq)}
	fwd.Paths = applyFilters(alignOrientation(g, idx, read.Seq, maxMM, opts, stats, false), g, opts, len(read.Seq))

	rc := read.Clone()
	rc.RevComplement()
	rev := &GenotypePaths{ReadName: string(read.ID), Length: len(read.Seq)}
	rev.Paths = applyFilters(alignOrientation(g, idx, rc.Seq, maxMM, opts, stats, true), g, opts, len(read.Seq))

	gp := selectStrand(fwd, rev)
	if gp == nil {
		gp = &GenotypePaths{ReadName: string(read.ID), Length: len(read.Seq)}
	}
	return gp, nil
}

// selectStrand picks one of the forward/reverse-complement candidates per
// compareGenotypePaths's tie-break, or returns nil when neither orientation
// wins cleanly (the "drop both" outcome).
func selectStrand(fwd, rev *GenotypePaths) *GenotypePaths {
	switch {
	case len(fwd.Paths) == 0 && len(rev.Paths) == 0:
		return nil
	case len(fwd.Paths) == 0:
		return rev
	case len(rev.Paths) == 0:
		return fwd
	}
	switch compareGenotypePaths(fwd, rev) {
	case 1:
		return fwd
	case -1:
		return rev
	default:
		return nil
	}
}

// compareGenotypePaths implements the strand-selection comparator: prefer
// the candidate with more surviving paths, then the one with longer
// coverage, then fewer mismatches, then a unique (single-path) candidate,
// and finally the original, non-reverse-complemented orientation. It
// returns 1 when a wins, -1 when b wins, and 0 on an exact tie.
func compareGenotypePaths(a, b *GenotypePaths) int {
	if d := len(a.Paths) - len(b.Paths); d != 0 {
		return sign(d)
	}
	if d := coverage(a) - coverage(b); d != 0 {
		return sign(d)
	}
	if d := minMismatches(b) - minMismatches(a); d != 0 {
		return sign(d)
	}
	if d := boolToInt(len(a.Paths) == 1) - boolToInt(len(b.Paths) == 1); d != 0 {
		return sign(d)
	}
	if d := boolToInt(!isReverseOriented(a)) - boolToInt(!isReverseOriented(b)); d != 0 {
		return sign(d)
	}
	return 0
}

// coverage is the longest span any surviving path covers.
func coverage(gp *GenotypePaths) int {
	max := 0
	for _, p := range gp.Paths {
		if c := int(p.End - p.Start); c > max {
			max = c
		}
	}
	return max
}

// minMismatches is the fewest mismatches any surviving path cost, or -1 if
// there are no paths.
func minMismatches(gp *GenotypePaths) int {
	best := -1
	for _, p := range gp.Paths {
		if best == -1 || p.Mismatches < best {
			best = p.Mismatches
		}
	}
	return best
}

// isReverseOriented reports whether every surviving path in gp came from the
// reverse-complement orientation.
func isReverseOriented(gp *GenotypePaths) bool {
	for _, p := range gp.Paths {
		if !p.Reverse {
			return false
		}
	}
	return len(gp.Paths) > 0
}

func sign(d int) int {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	default:
		return 0
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func alignOrientation(g *vgraph.Graph, idx *kmerindex.Index, seq []byte, maxMM int, opts *gtconfig.Options, stats *gterrors.RunStats, reverse bool) []*Path {
	offsets := pickSeedOffsets(seq, opts.K, seedStride)
	var paths []*Path
	seen := make(map[string]bool)

	for _, off := range offsets {
		key, ok := kmerindex.EncodeKmer(seq[off : off+opts.K])
		if !ok {
			continue
		}
		labels, err := idx.Get([]uint64{key}, opts)
		if err != nil {
			if be, ok := err.(*gterrors.BudgetExceededError); ok && stats != nil {
				stats.Record(be)
			}
			continue
		}
		if len(labels) == 0 {
			if hits := idx.MultiGetHamming1([][]uint64{{key}}); len(hits) == 1 {
				labels = hits[0]
			}
		}
		for _, lbl := range labels {
			candidateStart := int64(lbl.Start) - int64(off)
			if candidateStart < 0 {
				continue
			}
			for _, loc := range g.LocationsOf(uint32(candidateStart), nil) {
				for _, r := range g.WalkMatch(loc, seq, maxMM, nil) {
					p := &Path{
						Start:      uint32(candidateStart),
						End:        uint32(candidateStart) + uint32(len(seq)),
						Mismatches: r.Mismatches,
						Alleles:    r.Alleles,
						Reverse:    reverse,
					}
					k := pathKey(p)
					if seen[k] {
						continue
					}
					seen[k] = true
					paths = append(paths, p)
				}
			}
		}
	}
	return paths
}

func pathKey(p *Path) string {
	return fmt.Sprintf("%d-%d-%d-%v", p.Start, p.End, p.Mismatches, p.Reverse)
}
