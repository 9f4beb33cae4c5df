package genotype

// Filter states for SampleCall.Filter, matching sample_call.hpp's
// mutable int8_t filter (-1 unknown, 0 PASS, 1 GQ-filtered).
const (
	FilterUnknown int8 = -1
	FilterPass    int8 = 0
	FilterGQ      int8 = 1
)

// SampleCall is the output-facing per-sample, per-bubble call: phred-scaled
// genotype likelihoods over unordered allele pairs (GT and PL), per-allele
// coverage (AD and DP), and the depth/filter summary fields the
// output-facing Variant type carries one of per sample.
type SampleCall struct {
	Phred              []uint8
	Coverage           []uint16
	RefTotalDepth      uint16
	AltTotalDepth      uint16
	AmbiguousDepth     uint8
	AltProperPairDepth uint8
	Filter             int8
}

// phredFromLogScore normalizes a log_score vector to PL by subtracting its
// minimum and capping every entry at 255, the way GraphTyper's phred
// conversion caps genotype likelihoods to fit a uint8.
func phredFromLogScore(logScore []uint16) []uint8 {
	if len(logScore) == 0 {
		return nil
	}
	min := logScore[0]
	for _, s := range logScore[1:] {
		if s < min {
			min = s
		}
	}
	pl := make([]uint8, len(logScore))
	for i, s := range logScore {
		d := s - min
		if d > 255 {
			d = 255
		}
		pl[i] = uint8(d)
	}
	return pl
}

// BuildSampleCall emits the SampleCall for bubble gtIdx in cluster h,
// sample pn, when the cluster is exactly that one bubble: the cluster's
// own combination space already is that bubble's allele space, so no
// projection is needed.
func (h *Haplotype) BuildSampleCall(gtIdx, pn int) *SampleCall {
	if pn < 0 || pn >= len(h.HapSamples) || gtIdx < 0 || gtIdx >= len(h.GTs) {
		return nil
	}
	hs := &h.HapSamples[pn]
	sc := &SampleCall{
		Phred:              phredFromLogScore(hs.LogScore),
		AmbiguousDepth:     hs.GetAmbiguousDepth(),
		AltProperPairDepth: hs.GetAltProperPairDepth(),
	}
	depths := hs.AlleleDepth[gtIdx]
	sc.Coverage = make([]uint16, h.GTs[gtIdx].NumAlleles())
	for i := range sc.Coverage {
		if i < len(depths) {
			sc.Coverage[i] = depths[i].Total
		}
	}
	if len(sc.Coverage) > 0 {
		sc.RefTotalDepth = sc.Coverage[0]
		for _, c := range sc.Coverage[1:] {
			sc.AltTotalDepth = addSaturating(sc.AltTotalDepth, c)
		}
	}
	sc.Filter = filterFromDepth(sc.RefTotalDepth, sc.AltTotalDepth)
	return sc
}

// filterFromDepth reports PASS once any read supports the bubble and
// UNKNOWN otherwise, leaving the stricter GQ-based filter (sample_call.hpp's
// check_filter) to a caller with a genotype-quality threshold to apply.
func filterFromDepth(ref, alt uint16) int8 {
	if ref == 0 && alt == 0 {
		return FilterUnknown
	}
	return FilterPass
}

// MakeBiAllelicCall projects a multi-bubble cluster's call onto one
// alternative allele altAllele of bubble gtIdx. Each combination falls in
// a bucket by gtIdx's allele: the reference (0), altAllele, or neither;
// pairs touching a "neither" combination are left out, and each of the
// three biallelic PL slots gets the mean LogScore of the remaining pairs
// that fall in it, whatever the other bubbles' alleles are. Coverage sums
// gtIdx's reference and altAllele depths. This mirrors
// make_bi_allelic_call's role of turning a multi-allelic call into a
// biallelic one for a single ALT.
func (h *Haplotype) MakeBiAllelicCall(gtIdx, pn, altAllele int) *SampleCall {
	if pn < 0 || pn >= len(h.HapSamples) || gtIdx < 0 || gtIdx >= len(h.GTs) {
		return nil
	}
	hs := &h.HapSamples[pn]
	combos := h.NumCombinations()
	if combos > 64 {
		combos = 64
	}

	// bucket(combo) is 0 if gtIdx's allele in combo is the reference, 1 if
	// it is altAllele, and -1 (excluded) otherwise.
	bucket := func(combo int) int {
		alleles := h.comboAlleles(combo)
		switch alleles[gtIdx] {
		case 0:
			return 0
		case altAllele:
			return 1
		default:
			return -1
		}
	}

	biScore := make([]uint16, 3) // pairIndex(0,0), pairIndex(0,1), pairIndex(1,1)
	biCount := make([]uint16, 3)
	for a := 0; a < combos; a++ {
		ba := bucket(a)
		if ba < 0 {
			continue
		}
		for b := a; b < combos; b++ {
			bb := bucket(b)
			if bb < 0 {
				continue
			}
			idx := pairIndex(ba, bb)
			biScore[idx] = addSaturating(biScore[idx], hs.LogScore[pairIndex(a, b)])
			biCount[idx]++
		}
	}
	for i, c := range biCount {
		if c > 1 {
			biScore[i] /= c
		}
	}

	sc := &SampleCall{
		Phred:              phredFromLogScore(biScore),
		AmbiguousDepth:     hs.GetAmbiguousDepth(),
		AltProperPairDepth: hs.GetAltProperPairDepth(),
		Coverage:           make([]uint16, 2),
	}
	for i, depth := range hs.AlleleDepth[gtIdx] {
		if i == 0 {
			sc.Coverage[0] += depth.Total
		} else if i == altAllele {
			sc.Coverage[1] += depth.Total
		}
	}
	sc.RefTotalDepth = sc.Coverage[0]
	sc.AltTotalDepth = sc.Coverage[1]
	sc.Filter = filterFromDepth(sc.RefTotalDepth, sc.AltTotalDepth)
	return sc
}

// MakeCallBasedOnCoverage builds a call from raw allele depth alone,
// ignoring log_score entirely: the coverage-driven fallback the
// structural-variant bubbles reserve, where a read either
// covers the SV breakpoint allele or it doesn't, and depth is the only
// signal available.
func (h *Haplotype) MakeCallBasedOnCoverage(gtIdx, pn int) *SampleCall {
	if pn < 0 || pn >= len(h.HapSamples) || gtIdx < 0 || gtIdx >= len(h.GTs) {
		return nil
	}
	hs := &h.HapSamples[pn]
	depths := hs.AlleleDepth[gtIdx]
	n := h.GTs[gtIdx].NumAlleles()
	sc := &SampleCall{
		Coverage:           make([]uint16, n),
		AmbiguousDepth:     hs.GetAmbiguousDepth(),
		AltProperPairDepth: hs.GetAltProperPairDepth(),
	}
	var total uint32
	called := 0
	for i := range sc.Coverage {
		if i < len(depths) {
			sc.Coverage[i] = depths[i].Total
		}
		total += uint32(sc.Coverage[i])
		if sc.Coverage[i] > sc.Coverage[called] {
			called = i
		}
	}
	sc.RefTotalDepth = sc.Coverage[0]
	for _, c := range sc.Coverage[1:] {
		sc.AltTotalDepth = addSaturating(sc.AltTotalDepth, c)
	}

	sc.Phred = make([]uint8, n*(n+1)/2)
	if total > 0 {
		for i := range sc.Phred {
			sc.Phred[i] = 255
		}
		// the called allele's homozygous pair gets the best score;
		// every pair involving it scales down proportionally to its
		// share of total depth.
		share := float64(sc.Coverage[called]) / float64(total)
		for a := 0; a < n; a++ {
			for b := a; b < n; b++ {
				idx := pairIndex(a, b)
				if a == called || b == called {
					sc.Phred[idx] = uint8(255 * (1 - share))
				}
			}
		}
		sc.Phred[pairIndex(called, called)] = 0
	}
	sc.Filter = filterFromDepth(sc.RefTotalDepth, sc.AltTotalDepth)
	return sc
}
