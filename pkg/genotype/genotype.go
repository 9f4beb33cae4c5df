// Package genotype implements the haplotype-cluster log-likelihood
// genotyper (spec component G): combining a sample's read evidence, bubble
// by bubble, into per-sample likelihood vectors and allele calls.
//
// A Haplotype groups the bubbles (Genotypes) whose k-mer neighborhoods
// overlap within MaxReadLength, the way GraphTyper clusters bubbles so one
// read can only ever touch one cluster. Every candidate haplotype is an
// assignment of one allele to each bubble in the cluster; these are
// enumerated densely as "combination indices" rather than kept as explicit
// tuples, mirroring the bitset-indexed candidate space haplotype.hpp
// describes for the biallelic case and generalizing it to multi-allelic
// bubbles (the bit width becomes a product of allele counts rather than a
// power of two).
package genotype

import (
	"github.com/popgraph/vgtyper/pkg/align"
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

// Genotype is one bubble, typed with its allele sequences in reference-first
// order: Alleles[0] is always the reference allele, matching the
// convention that allele 0 is always the reference allele, even though
// the underlying vgraph.VarNode array numbers alternates first and the
// reference allele last.
type Genotype struct {
	VarOrder uint32
	Alleles  [][]byte
}

// NumAlleles returns the number of alleles this bubble carries.
func (gt Genotype) NumAlleles() int { return len(gt.Alleles) }

// GenotypeFromBubble builds a Genotype for the bubble opening at order,
// reordering the graph's alt-first/ref-last VarNode layout into the
// ref-first layout callers expect.
func GenotypeFromBubble(g *vgraph.Graph, order uint32) Genotype {
	var refAllele []byte
	var alts [][]byte
	for _, v := range g.VarNodes {
		if v.Order != order {
			continue
		}
		if v.IsRef {
			refAllele = v.DNA
		} else {
			alts = append(alts, v.DNA)
		}
	}
	alleles := make([][]byte, 0, len(alts)+1)
	alleles = append(alleles, refAllele)
	alleles = append(alleles, alts...)
	return Genotype{VarOrder: order, Alleles: alleles}
}

// Haplotype is a cluster of related bubbles genotyped together.
type Haplotype struct {
	GTs        []Genotype
	HapSamples []HapSample

	// explains is per-gt scratch: bit j of explains[i] means allele j of
	// GTs[i] is consistent with the read currently being processed.
	// Clear clears it between reads.
	explains []uint64
}

// NewHaplotype builds a Haplotype for the given bubble cluster, with
// per-sample state allocated for numSamples samples.
func NewHaplotype(gts []Genotype, numSamples int) *Haplotype {
	h := &Haplotype{GTs: gts}
	h.ClearAndResizeSamples(numSamples)
	h.explains = make([]uint64, len(gts))
	return h
}

// AddGenotype appends a bubble to the cluster, resizing per-gt scratch.
func (h *Haplotype) AddGenotype(gt Genotype) {
	h.GTs = append(h.GTs, gt)
	h.explains = append(h.explains, 0)
	for i := range h.HapSamples {
		h.HapSamples[i].growTo(len(h.GTs))
	}
}

// ClearAndResizeSamples discards all per-sample state and reallocates it
// for newSize samples, sized for the cluster's current combination count.
func (h *Haplotype) ClearAndResizeSamples(newSize int) {
	combos := h.NumCombinations()
	scoreLen := combos * (combos + 1) / 2
	h.HapSamples = make([]HapSample, newSize)
	for i := range h.HapSamples {
		h.HapSamples[i].init(len(h.GTs), scoreLen)
	}
}

// Clear drops all accumulated explain scratch without touching per-sample
// state.
func (h *Haplotype) Clear() {
	for i := range h.explains {
		h.explains[i] = 0
	}
}

// CheckForDuplicateHaplotypes reports whether two bubbles in the cluster
// share the same VarOrder, which would make their combination indices
// collide.
func (h *Haplotype) CheckForDuplicateHaplotypes() bool {
	seen := make(map[uint32]bool, len(h.GTs))
	for _, gt := range h.GTs {
		if seen[gt.VarOrder] {
			return true
		}
		seen[gt.VarOrder] = true
	}
	return false
}

// NumCombinations returns the number of candidate haplotypes: the product
// of each bubble's allele count, generalizing the biallelic-only 2^|gts|
// (which assumes every bubble is biallelic) to multi-allelic clusters.
func (h *Haplotype) NumCombinations() int {
	combos := 1
	for _, gt := range h.GTs {
		n := gt.NumAlleles()
		if n == 0 {
			n = 1
		}
		combos *= n
	}
	return combos
}

// GetGenotypeNum is an alias for NumCombinations kept for parity with
// haplotype.hpp's get_genotype_num.
func (h *Haplotype) GetGenotypeNum() int { return h.NumCombinations() }

// HasTooManyGenotypes reports whether the cluster's combination count
// exceeds the configured bit width, the condition that forces a cluster
// split upstream.
func (h *Haplotype) HasTooManyGenotypes(maxNumberOfHaplotypes int) bool {
	return h.NumCombinations() > maxNumberOfHaplotypes
}

// GetGenotypeIDs returns the VarOrder of every bubble in the cluster, in
// cluster order.
func (h *Haplotype) GetGenotypeIDs() []uint32 {
	ids := make([]uint32, len(h.GTs))
	for i, gt := range h.GTs {
		ids[i] = gt.VarOrder
	}
	return ids
}

// comboAlleles decodes a combination index into one allele index per bubble
// via mixed-radix decomposition, the bases being each bubble's allele count.
func (h *Haplotype) comboAlleles(combo int) []int {
	alleles := make([]int, len(h.GTs))
	for i := len(h.GTs) - 1; i >= 0; i-- {
		n := h.GTs[i].NumAlleles()
		if n == 0 {
			n = 1
		}
		alleles[i] = combo % n
		combo /= n
	}
	return alleles
}

// AddExplanation ORs bits into GTs[gtIdx]'s explain scratch, the way
// add_explanation accumulates evidence from every path that crosses a
// bubble.
func (h *Haplotype) AddExplanation(gtIdx int, bits uint64) {
	if gtIdx < 0 || gtIdx >= len(h.explains) {
		return
	}
	h.explains[gtIdx] |= bits
}

// AddExplanationsFromPath sets, for every bubble in the cluster that p
// crosses, a singleton explain bit for the allele p committed to. Bubbles p
// does not cross are left at zero, meaning "unconstrained" rather than
// "inconsistent with every allele". p.Alleles carries vgraph's physical
// VarNum (alternates numbered first, reference numbered last); it is
// remapped to this package's reference-first allele indexing before the
// bit is set.
func (h *Haplotype) AddExplanationsFromPath(p *align.Path) {
	for i, gt := range h.GTs {
		varNum, ok := p.Alleles[gt.VarOrder]
		if !ok {
			continue
		}
		n := gt.NumAlleles()
		if n == 0 {
			continue
		}
		refFirstIndex := (int(varNum) + 1) % n
		h.AddExplanation(i, 1<<uint(refFirstIndex))
	}
}

// ExplainToPathExplain folds the per-gt explain scratch into a single
// bitset over the cluster's combination space: bit c is set when, for
// every bubble, either that bubble is unconstrained or combo c's allele at
// that bubble is one of the explained alleles.
func (h *Haplotype) ExplainToPathExplain() uint64 {
	combos := h.NumCombinations()
	var result uint64
	for c := 0; c < combos && c < 64; c++ {
		alleles := h.comboAlleles(c)
		consistent := true
		for i, a := range alleles {
			if h.explains[i] != 0 && h.explains[i]&(1<<uint(a)) == 0 {
				consistent = false
				break
			}
		}
		if consistent {
			result |= 1 << uint(c)
		}
	}
	return result
}
