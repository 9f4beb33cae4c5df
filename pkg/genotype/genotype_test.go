package genotype

import (
	"testing"

	"github.com/popgraph/vgtyper/pkg/align"
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

func snpBubbleGraph(t *testing.T) *vgraph.Graph {
	t.Helper()
	ref := make([]byte, 40)
	for i := range ref {
		ref[i] = "ACGT"[i%4]
	}
	ref[19] = 'C'
	records := []vgraph.VariantRecord{
		{Pos: 20, Ref: []byte("C"), Alts: [][]byte{[]byte("T")}},
	}
	g, err := vgraph.BuildGraph(vgraph.GenomicRegion{Chr: "chrS"}, 0, ref, records)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	return g
}

func triallelicBubbleGraph(t *testing.T) *vgraph.Graph {
	t.Helper()
	ref := make([]byte, 40)
	for i := range ref {
		ref[i] = "ACGT"[i%4]
	}
	ref[29] = 'A'
	records := []vgraph.VariantRecord{
		{Pos: 30, Ref: []byte("A"), Alts: [][]byte{[]byte("G"), []byte("GA")}},
	}
	g, err := vgraph.BuildGraph(vgraph.GenomicRegion{Chr: "chrT"}, 0, ref, records)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	return g
}

func bubbleOrder(g *vgraph.Graph) uint32 {
	return g.VarNodes[0].Order
}

func TestGenotypeFromBubbleIsRefFirst(t *testing.T) {
	g := snpBubbleGraph(t)
	order := bubbleOrder(g)
	gt := GenotypeFromBubble(g, order)
	if gt.NumAlleles() != 2 {
		t.Fatalf("NumAlleles = %d, want 2", gt.NumAlleles())
	}
	if string(gt.Alleles[0]) != "C" {
		t.Fatalf("Alleles[0] = %q, want the reference allele %q", gt.Alleles[0], "C")
	}
	if string(gt.Alleles[1]) != "T" {
		t.Fatalf("Alleles[1] = %q, want %q", gt.Alleles[1], "T")
	}
}

func TestNumCombinationsMultiAllelic(t *testing.T) {
	g := triallelicBubbleGraph(t)
	order := bubbleOrder(g)
	gt := GenotypeFromBubble(g, order)
	h := NewHaplotype([]Genotype{gt}, 1)
	if got := h.NumCombinations(); got != 3 {
		t.Fatalf("NumCombinations = %d, want 3", got)
	}
}

func TestExplainToPathExplainSingleBubble(t *testing.T) {
	g := snpBubbleGraph(t)
	order := bubbleOrder(g)
	gt := GenotypeFromBubble(g, order)
	h := NewHaplotype([]Genotype{gt}, 1)

	refPath := &align.Path{Alleles: map[uint32]uint16{order: 1}} // VarNum 1 is ref (alt-first layout)
	h.AddExplanationsFromPath(refPath)
	if got := h.ExplainToPathExplain(); got != 1<<0 {
		t.Fatalf("ExplainToPathExplain (ref) = %b, want bit0 set", got)
	}

	h.Clear()
	altPath := &align.Path{Alleles: map[uint32]uint16{order: 0}} // VarNum 0 is the alt
	h.AddExplanationsFromPath(altPath)
	if got := h.ExplainToPathExplain(); got != 1<<1 {
		t.Fatalf("ExplainToPathExplain (alt) = %b, want bit1 set", got)
	}
}

func TestExplainToScoreMatchesCoverageScenario(t *testing.T) {
	g := snpBubbleGraph(t)
	order := bubbleOrder(g)
	gt := GenotypeFromBubble(g, order)
	h := NewHaplotype([]Genotype{gt}, 1)

	refPath := &align.Path{Alleles: map[uint32]uint16{order: 1}}
	altPath := &align.Path{Alleles: map[uint32]uint16{order: 0}}

	for i := 0; i < 20; i++ {
		h.Clear()
		h.AddExplanationsFromPath(refPath)
		h.ExplainToScore(0, false, 60, true, 0)
		h.CoverageToGTs(0, true)
	}
	for i := 0; i < 20; i++ {
		h.Clear()
		h.AddExplanationsFromPath(altPath)
		h.ExplainToScore(0, false, 60, true, 0)
		h.CoverageToGTs(0, true)
	}

	sc := h.BuildSampleCall(0, 0)
	if sc == nil {
		t.Fatal("BuildSampleCall returned nil")
	}
	het := pairIndex(0, 1)
	homRef := pairIndex(0, 0)
	homAlt := pairIndex(1, 1)
	if sc.Phred[het] != 0 {
		t.Fatalf("Phred[het] = %d, want 0", sc.Phred[het])
	}
	if sc.Phred[homRef] != 255 || sc.Phred[homAlt] != 255 {
		t.Fatalf("Phred[homRef]=%d Phred[homAlt]=%d, want both 255 (>> het)", sc.Phred[homRef], sc.Phred[homAlt])
	}
	if sc.Coverage[0] != 20 || sc.Coverage[1] != 20 {
		t.Fatalf("Coverage = %v, want [20 20]", sc.Coverage)
	}
}

func TestCoverageToGTsDetectsMultiAlt(t *testing.T) {
	g := triallelicBubbleGraph(t)
	order := bubbleOrder(g)
	gt := GenotypeFromBubble(g, order)
	h := NewHaplotype([]Genotype{gt}, 1)
	h.Clear()
	h.AddExplanation(0, 1<<1) // ref-first allele index 1
	h.CoverageToGTs(0, false)
	h.Clear()
	h.AddExplanation(0, 1<<2) // ref-first allele index 2
	h.CoverageToGTs(0, false)

	if got := h.HapSamples[0].GTCoverage[0]; got != MultiAltCoverage {
		t.Fatalf("GTCoverage = %d, want MultiAltCoverage", got)
	}
}

func TestCoverageToGTsNoCoverageWhenUnconstrained(t *testing.T) {
	g := snpBubbleGraph(t)
	order := bubbleOrder(g)
	gt := GenotypeFromBubble(g, order)
	h := NewHaplotype([]Genotype{gt}, 1)
	h.CoverageToGTs(0, false)
	if got := h.HapSamples[0].GTCoverage[0]; got != NoCoverage {
		t.Fatalf("GTCoverage = %d, want NoCoverage", got)
	}
}
