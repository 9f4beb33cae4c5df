package genotype

// Coverage sentinels for HapSample.Coverage, matching haplotype.hpp's
// NO_COVERAGE/MULTI_ALT_COVERAGE/MULTI_REF_COVERAGE constants.
const (
	NoCoverage       uint16 = 0xFFFF
	MultiAltCoverage uint16 = 0xFFFE
	MultiRefCoverage uint16 = 0xFFFD
)

// AlleleCoverage is a raw per-allele read count, kept as its own type
// (rather than a bare uint16) to match haplotype.hpp's AlleleCoverage and
// leave room for it to grow without reshaping the coverage matrix.
type AlleleCoverage struct {
	Total uint16
}

func (a *AlleleCoverage) increment() {
	if a.Total < 0xFFFF {
		a.Total++
	}
}

// HapSample is one sample's accumulated state within a Haplotype cluster.
type HapSample struct {
	// LogScore is the phred-like penalty for every unordered pair of
	// candidate haplotypes, length NumCombinations()*(NumCombinations()+1)/2.
	// Lower is better; zero means "no evidence against this pair yet".
	LogScore []uint16

	// GTCoverage is the resolved-allele-or-sentinel value for each bubble
	// in the cluster, accumulated across every read seen so far for this
	// sample.
	GTCoverage []uint16

	// AlleleDepth is the raw per-(bubble,allele) read count, used for
	// SampleCall depth fields and MakeCallBasedOnCoverage.
	AlleleDepth [][]AlleleCoverage

	MaxLogScore uint16

	Stats *HapStats

	ambiguousDepth     uint8
	ambiguousDepthAlt  uint8
	altProperPairDepth uint8
}

func (hs *HapSample) init(numGTs, scoreLen int) {
	hs.LogScore = make([]uint16, scoreLen)
	hs.GTCoverage = make([]uint16, numGTs)
	for i := range hs.GTCoverage {
		hs.GTCoverage[i] = NoCoverage
	}
	hs.AlleleDepth = make([][]AlleleCoverage, numGTs)
}

func (hs *HapSample) growTo(numGTs int) {
	for len(hs.GTCoverage) < numGTs {
		hs.GTCoverage = append(hs.GTCoverage, NoCoverage)
	}
	for len(hs.AlleleDepth) < numGTs {
		hs.AlleleDepth = append(hs.AlleleDepth, nil)
	}
}

// GetAmbiguousDepth, GetAmbiguousDepthAlt and GetAltProperPairDepth mirror
// HapSample's public getters in haplotype.hpp.
func (hs *HapSample) GetAmbiguousDepth() uint8     { return hs.ambiguousDepth }
func (hs *HapSample) GetAmbiguousDepthAlt() uint8  { return hs.ambiguousDepthAlt }
func (hs *HapSample) GetAltProperPairDepth() uint8 { return hs.altProperPairDepth }

// IncrementAmbiguousDepth, IncrementAmbiguousDepthAlt and
// IncrementAltProperPairDepth mirror the corresponding modifiers.
func (hs *HapSample) IncrementAmbiguousDepth() {
	if hs.ambiguousDepth < 0xFF {
		hs.ambiguousDepth++
	}
}

func (hs *HapSample) IncrementAmbiguousDepthAlt() {
	if hs.ambiguousDepthAlt < 0xFF {
		hs.ambiguousDepthAlt++
	}
}

func (hs *HapSample) IncrementAltProperPairDepth() {
	if hs.altProperPairDepth < 0xFF {
		hs.altProperPairDepth++
	}
}

// IncrementAlleleDepth bumps the read count for one bubble/allele pair.
func (hs *HapSample) IncrementAlleleDepth(gtIdx, alleleIdx int) {
	if gtIdx < 0 || gtIdx >= len(hs.AlleleDepth) {
		return
	}
	for len(hs.AlleleDepth[gtIdx]) <= alleleIdx {
		hs.AlleleDepth[gtIdx] = append(hs.AlleleDepth[gtIdx], AlleleCoverage{})
	}
	hs.AlleleDepth[gtIdx][alleleIdx].increment()
}

// singledOutAllele returns the allele index explains singles out, and
// whether it singles out exactly one.
func singledOutAllele(explains uint64) (int, bool) {
	if explains == 0 {
		return 0, false
	}
	allele := -1
	for b := 0; b < 64; b++ {
		if explains&(1<<uint(b)) == 0 {
			continue
		}
		if allele != -1 {
			return 0, false
		}
		allele = b
	}
	return allele, allele != -1
}

// CoverageToGTs resolves, for each bubble in the cluster, whether the read
// currently staged in explains singles out an allele, and folds that into
// HapSamples[pn].GTCoverage: a fresh bubble gets that allele; a bubble that
// already disagrees with a prior read's allele gets MULTI_ALT_COVERAGE (if
// neither allele is the reference, allele 0) or MULTI_REF_COVERAGE
// (otherwise); an unconstrained bubble is left at NO_COVERAGE.
func (h *Haplotype) CoverageToGTs(pn int, isProperPair bool) {
	if pn < 0 || pn >= len(h.HapSamples) {
		return
	}
	hs := &h.HapSamples[pn]
	hs.growTo(len(h.GTs))
	for i := range h.GTs {
		allele, ok := singledOutAllele(h.explains[i])
		if !ok {
			continue
		}
		hs.IncrementAlleleDepth(i, allele)
		if allele == 0 && isProperPair {
			// reference-supporting proper pair; no dedicated counter
			// beyond the allele depth matrix itself.
		} else if isProperPair {
			hs.IncrementAltProperPairDepth()
		}

		switch prior := hs.GTCoverage[i]; prior {
		case NoCoverage:
			hs.GTCoverage[i] = uint16(allele)
		case MultiAltCoverage, MultiRefCoverage:
			// already ambiguous; stays ambiguous.
		default:
			if int(prior) != allele {
				if prior == 0 || allele == 0 {
					hs.GTCoverage[i] = MultiRefCoverage
				} else {
					hs.GTCoverage[i] = MultiAltCoverage
				}
			}
		}
	}
}
