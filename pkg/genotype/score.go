package genotype

// largePenalty is the log_score contribution for a candidate haplotype pair
// that neither bit of the read's combination-space explain bitset touches:
// strong evidence against that pair. nonUniqueExtra is the additional
// penalty a half-covered pair takes when the read's placement was not
// unique (non_unique_paths), reflecting the weaker evidence a non-unique
// alignment provides.
//
// haplotype.hpp declares explain_to_score's signature but ships no body in
// the source this module is grounded on; these constants and the
// covered/half-covered/uncovered tiering follow the textual algorithm the
// textual algorithm gives rather than a ported formula.
const (
	largePenalty   uint16 = 1000
	nonUniqueExtra uint16 = 50
)

// epsilonMapq turns a mapping quality into a per-mismatch penalty: a
// mismatch against a confidently-placed read (high mapq) is stronger
// evidence against the haplotype pair than the same mismatch against a
// read whose placement was already uncertain.
func epsilonMapq(mapq uint8) uint16 {
	return uint16(mapq) + 1
}

// addSaturating adds b into a without wrapping past uint16's range.
func addSaturating(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	if sum > 0xFFFF {
		return 0xFFFF
	}
	return uint16(sum)
}

// pairIndex maps an unordered pair (a,b), a<=b, over [0,n) into its
// position in the flattened n*(n+1)/2 upper-triangular score vector.
func pairIndex(a, b int) int {
	if a > b {
		a, b = b, a
	}
	return b*(b+1)/2 + a
}

// ExplainToScore folds one read's evidence into HapSamples[pn].LogScore:
// for every unordered pair of candidate haplotypes (a,b), the pair is
// covered when the read's combination-space explain bitset sets both a and
// b, half-covered when it sets exactly one, and uncovered when it sets
// neither. explain_to_score in haplotype.hpp takes these same five
// parameters.
func (h *Haplotype) ExplainToScore(pn int, nonUniquePaths bool, mapq uint8, fullyAligned bool, mismatches int) {
	if pn < 0 || pn >= len(h.HapSamples) {
		return
	}
	explain := h.ExplainToPathExplain()
	combos := h.NumCombinations()
	if combos > 64 {
		combos = 64
	}
	perMismatch := epsilonMapq(mapq)
	if !fullyAligned {
		perMismatch = addSaturating(perMismatch, perMismatch/2)
	}
	covered := uint16(mismatches) * perMismatch
	halfCovered := perMismatch
	if nonUniquePaths {
		halfCovered = addSaturating(halfCovered, nonUniqueExtra)
	}

	hs := &h.HapSamples[pn]
	for a := 0; a < combos; a++ {
		aSet := explain&(1<<uint(a)) != 0
		for b := a; b < combos; b++ {
			bSet := explain&(1<<uint(b)) != 0
			var penalty uint16
			switch {
			case aSet && bSet:
				penalty = covered
			case aSet || bSet:
				penalty = halfCovered
			default:
				penalty = largePenalty
			}
			idx := pairIndex(a, b)
			if idx < len(hs.LogScore) {
				hs.LogScore[idx] = addSaturating(hs.LogScore[idx], penalty)
			}
		}
	}
}

// UpdateMaxLogScore records the lowest (best-supported) pair score seen so
// far for sample pn. The field keeps haplotype.hpp's name even though,
// because lower log_score is better, "max" here means "best", not
// "largest".
func (h *Haplotype) UpdateMaxLogScore(pn int) {
	if pn < 0 || pn >= len(h.HapSamples) {
		return
	}
	hs := &h.HapSamples[pn]
	if len(hs.LogScore) == 0 {
		return
	}
	best := hs.LogScore[0]
	for _, s := range hs.LogScore[1:] {
		if s < best {
			best = s
		}
	}
	hs.MaxLogScore = best
}
