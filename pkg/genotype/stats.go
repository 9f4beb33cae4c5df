package genotype

// HapStats holds the auxiliary, optional statistics
// are "only calculated when --stats is used": a mapq histogram, clipped and
// proper-pair read counts, strand balance, realignment distances, and a
// graph-complexity score per bubble.
type HapStats struct {
	MapqHistogram   [64]uint32
	FullyAligned    uint32
	ClippedReads    uint32
	ProperPairs     uint32
	ForwardStrand   uint32
	ReverseStrand   uint32
	Realignments    []RealignmentDelta
	GraphComplexity uint8
}

// RealignmentDelta records how far a read moved when it was realigned
// against the graph, for later reporting.
type RealignmentDelta struct {
	OriginalPos uint32
	NewPos      uint32
}

// statsOrNew returns h's stats block for sample pn, allocating it on first
// use, mirroring the way HapSample's stats pointer is left nil until the
// --stats option asks for it.
func (h *Haplotype) statsOrNew(pn int) *HapStats {
	hs := &h.HapSamples[pn]
	if hs.Stats == nil {
		hs.Stats = &HapStats{}
	}
	return hs.Stats
}

// MapqToStats bins a read's mapping quality into the histogram.
func (h *Haplotype) MapqToStats(pn int, mapq uint8) {
	if pn < 0 || pn >= len(h.HapSamples) {
		return
	}
	s := h.statsOrNew(pn)
	idx := mapq
	if idx > 63 {
		idx = 63
	}
	s.MapqHistogram[idx]++
}

// ClippedReadsToStats counts whether a read was fully aligned or clipped.
func (h *Haplotype) ClippedReadsToStats(pn int, fullyAligned bool) {
	if pn < 0 || pn >= len(h.HapSamples) {
		return
	}
	s := h.statsOrNew(pn)
	if fullyAligned {
		s.FullyAligned++
	} else {
		s.ClippedReads++
	}
}

// StrandToStats tallies which strand a read flagged first-in-pair came
// from; reads without that flag (second mates and unpaired reads) are not
// counted.
func (h *Haplotype) StrandToStats(pn int, forwardStrand, isFirstInPair bool) {
	if pn < 0 || pn >= len(h.HapSamples) || !isFirstInPair {
		return
	}
	s := h.statsOrNew(pn)
	if forwardStrand {
		s.ForwardStrand++
	} else {
		s.ReverseStrand++
	}
}

// RealignmentToStats records a read's position shift from realignment
// against the graph, unless the read was unaligned or not clipped to begin
// with.
func (h *Haplotype) RealignmentToStats(pn int, isUnalignedRead, isOriginallyClipped bool, originalPos, newPos uint32) {
	if pn < 0 || pn >= len(h.HapSamples) || isUnalignedRead || !isOriginallyClipped {
		return
	}
	s := h.statsOrNew(pn)
	s.Realignments = append(s.Realignments, RealignmentDelta{OriginalPos: originalPos, NewPos: newPos})
}

// GraphComplexityToStats records the cluster's graph-complexity score
// (the Get10Log10NumPaths measure) in sample pn's stats block, so
// downstream reporting can weight calls by how branchy the
// underlying graph region is.
func (h *Haplotype) GraphComplexityToStats(pn int, complexity uint8) {
	if pn < 0 || pn >= len(h.HapSamples) {
		return
	}
	h.statsOrNew(pn).GraphComplexity = complexity
}
