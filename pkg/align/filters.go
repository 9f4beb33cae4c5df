package align

import (
	"github.com/popgraph/vgtyper/pkg/gtconfig"
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

// applyFilters drops paths that carry no genotyping signal:
// too short to have been seeded at all, too many mismatches for the
// configured budget, entirely confined to one variant allele with no
// reference anchor on either side (fully special), or a non-reference path
// shadowed by an equal-length reference path that matched perfectly.
func applyFilters(paths []*Path, g *vgraph.Graph, opts *gtconfig.Options, readLength int) []*Path {
	if readLength < opts.K {
		return nil
	}
	maxMM := mismatchBudget(readLength, opts.K)
	var out []*Path
	for _, p := range paths {
		if !MismatchesWithinBudget(p, maxMM) {
			continue
		}
		if FullySpecial(p, g) {
			continue
		}
		out = append(out, p)
	}
	return dropShadowedByPerfectReference(out, g)
}

// dropShadowedByPerfectReference implements the "read-matches-ref" filter:
// a non-reference path is dropped when an equal-length reference path over
// the same span matched with zero mismatches, since the read is then
// unambiguous reference support and the alt-allele path adds no signal.
func dropShadowedByPerfectReference(paths []*Path, g *vgraph.Graph) []*Path {
	type span struct{ start, end uint32 }
	perfectRef := make(map[span]bool)
	for _, p := range paths {
		if p.Mismatches == 0 && MatchesReference(p, g) {
			perfectRef[span{p.Start, p.End}] = true
		}
	}
	if len(perfectRef) == 0 {
		return paths
	}
	var out []*Path
	for _, p := range paths {
		if !MatchesReference(p, g) && perfectRef[span{p.Start, p.End}] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MismatchesWithinBudget reports whether p's mismatch count is within
// maxMismatches, the safety check applied after a walk completes in case a
// caller constructed a Path outside AlignRead.
func MismatchesWithinBudget(p *Path, maxMismatches int) bool {
	return p.Mismatches <= maxMismatches
}

// MatchesReference reports whether p never commits to a non-reference
// allele, i.e. the read is consistent with the backbone alone.
func MatchesReference(p *Path, g *vgraph.Graph) bool {
	return !p.CrossesVariant(g)
}

// FullySpecial reports whether p's entire span lies inside a single
// variant allele's synthetic coordinate range, meaning it never touches an
// unambiguous backbone position and so can't anchor a reference-relative
// placement on its own.
func FullySpecial(p *Path, g *vgraph.Graph) bool {
	if len(p.Alleles) != 1 {
		return false
	}
	for order, num := range p.Alleles {
		for _, v := range g.VarNodes {
			if v.Order == order && v.VarNum == num {
				return uint32(len(v.DNA)) >= p.End-p.Start
			}
		}
	}
	return false
}
