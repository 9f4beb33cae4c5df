package genotype

import "testing"

func TestBuildSampleCallFilterUnknownWithNoDepth(t *testing.T) {
	gt := Genotype{VarOrder: 1, Alleles: [][]byte{[]byte("A"), []byte("G")}}
	h := NewHaplotype([]Genotype{gt}, 1)
	sc := h.BuildSampleCall(0, 0)
	if sc.Filter != FilterUnknown {
		t.Fatalf("Filter = %d, want FilterUnknown", sc.Filter)
	}
	if len(sc.Phred) != 3 {
		t.Fatalf("len(Phred) = %d, want 3", len(sc.Phred))
	}
}

func TestBuildSampleCallFilterPassWithDepth(t *testing.T) {
	gt := Genotype{VarOrder: 1, Alleles: [][]byte{[]byte("A"), []byte("G")}}
	h := NewHaplotype([]Genotype{gt}, 1)
	h.HapSamples[0].IncrementAlleleDepth(0, 0)
	h.HapSamples[0].IncrementAlleleDepth(0, 1)
	sc := h.BuildSampleCall(0, 0)
	if sc.Filter != FilterPass {
		t.Fatalf("Filter = %d, want FilterPass", sc.Filter)
	}
	if sc.RefTotalDepth != 1 || sc.AltTotalDepth != 1 {
		t.Fatalf("RefTotalDepth=%d AltTotalDepth=%d, want 1 and 1", sc.RefTotalDepth, sc.AltTotalDepth)
	}
}

func TestMakeCallBasedOnCoverageCallsDominantAllele(t *testing.T) {
	gt := Genotype{VarOrder: 1, Alleles: [][]byte{[]byte("A"), []byte("<SV:0000001>")}}
	h := NewHaplotype([]Genotype{gt}, 1)
	for i := 0; i < 10; i++ {
		h.HapSamples[0].IncrementAlleleDepth(0, 1)
	}
	sc := h.MakeCallBasedOnCoverage(0, 0)
	if sc.Filter != FilterPass {
		t.Fatalf("Filter = %d, want FilterPass", sc.Filter)
	}
	if sc.Phred[pairIndex(1, 1)] != 0 {
		t.Fatalf("Phred[1/1] = %d, want 0 (dominant allele)", sc.Phred[pairIndex(1, 1)])
	}
	if sc.Phred[pairIndex(0, 0)] == 0 {
		t.Fatal("Phred[0/0] should not be 0 when every read supports the SV allele")
	}
}

func TestMakeBiAllelicCallProjectsTriallelicCluster(t *testing.T) {
	gt := Genotype{VarOrder: 1, Alleles: [][]byte{[]byte("A"), []byte("G"), []byte("GA")}}
	h := NewHaplotype([]Genotype{gt}, 1)

	refPath := map[uint32]uint16{1: 2} // physical VarNum 2 = ref "A" (alts G,GA numbered 0,1)
	alt1 := map[uint32]uint16{1: 0}    // physical VarNum 0 = "G"

	for i := 0; i < 5; i++ {
		h.Clear()
		for order, varNum := range refPath {
			n := gt.NumAlleles()
			h.AddExplanation(0, 1<<uint((int(varNum)+1)%n))
			_ = order
		}
		h.ExplainToScore(0, false, 60, true, 0)
	}
	for i := 0; i < 5; i++ {
		h.Clear()
		for order, varNum := range alt1 {
			n := gt.NumAlleles()
			h.AddExplanation(0, 1<<uint((int(varNum)+1)%n))
			_ = order
		}
		h.ExplainToScore(0, false, 60, true, 0)
	}

	sc := h.MakeBiAllelicCall(0, 0, 1) // project onto allele index 1 ("G")
	if len(sc.Phred) != 3 {
		t.Fatalf("len(Phred) = %d, want 3", len(sc.Phred))
	}
	if sc.Phred[pairIndex(0, 1)] != 0 {
		t.Fatalf("Phred[het] = %d, want 0", sc.Phred[pairIndex(0, 1)])
	}
}
