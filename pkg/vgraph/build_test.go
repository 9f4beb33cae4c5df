package vgraph

import (
	"bytes"
	"testing"
)

// TestBuildGraphSNP covers the simplest end-to-end case: a single SNP
// splits the backbone into two RefNodes around a two-allele bubble, alt
// allele first, reference allele last.
func TestBuildGraphSNP(t *testing.T) {
	ref := bytes.Repeat([]byte("AGGTTTCCCC"), 4)[:36] // 36bp before the SNP
	ref = append(ref, 'A')                            // the reference base at the SNP
	ref = append(ref, bytes.Repeat([]byte("CCCAGGTT"), 4)...)

	records := []VariantRecord{
		{Pos: 36, Ref: []byte("A"), Alts: [][]byte{[]byte("C")}},
	}
	g, err := BuildGraph(GenomicRegion{Chr: "chr1"}, 0, ref, records)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(g.RefNodes) != 2 {
		t.Fatalf("len(RefNodes) = %d, want 2", len(g.RefNodes))
	}
	if len(g.VarNodes) != 2 {
		t.Fatalf("len(VarNodes) = %d, want 2", len(g.VarNodes))
	}
	if g.RefNodes[0].Order != 1 {
		t.Errorf("RefNodes[0].Order = %d, want 1", g.RefNodes[0].Order)
	}
	if len(g.RefNodes[0].DNA) != 36 {
		t.Errorf("len(RefNodes[0].DNA) = %d, want 36", len(g.RefNodes[0].DNA))
	}
	if string(g.VarNodes[0].DNA) != "C" {
		t.Errorf("VarNodes[0].DNA = %q, want C (alt first)", g.VarNodes[0].DNA)
	}
	if string(g.VarNodes[1].DNA) != "A" || !g.VarNodes[1].IsRef {
		t.Errorf("VarNodes[1] = %q IsRef=%v, want A IsRef=true", g.VarNodes[1].DNA, g.VarNodes[1].IsRef)
	}
	if g.RefNodes[1].Order != 38 {
		t.Errorf("RefNodes[1].Order = %d, want 38", g.RefNodes[1].Order)
	}
}

// TestBuildGraphAdjacentSNPs covers two adjacent, non-overlapping SNPs:
// they remain two separate bubbles joined by an empty-DNA connector
// RefNode, rather than collapsing into one four-allele bubble.
func TestBuildGraphAdjacentSNPs(t *testing.T) {
	ref := []byte("AAAACCGGTTTT")
	records := []VariantRecord{
		{Pos: 4, Ref: []byte("C"), Alts: [][]byte{[]byte("A")}},
		{Pos: 5, Ref: []byte("C"), Alts: [][]byte{[]byte("A")}},
	}
	g, err := BuildGraph(GenomicRegion{Chr: "chr2"}, 0, ref, records)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(g.RefNodes) != 3 {
		t.Fatalf("len(RefNodes) = %d, want 3", len(g.RefNodes))
	}
	if len(g.VarNodes) != 4 {
		t.Fatalf("len(VarNodes) = %d, want 4", len(g.VarNodes))
	}
	if len(g.RefNodes[1].DNA) != 0 {
		t.Errorf("middle RefNode DNA = %q, want empty", g.RefNodes[1].DNA)
	}
}

// TestBuildGraphMultiAllelicIndel covers a multi-allelic bubble with an
// insertion allele, checking the allele order and that the insertion
// registers exactly the expected ref-reach and actual special positions.
func TestBuildGraphMultiAllelicIndel(t *testing.T) {
	ref := append(bytes.Repeat([]byte("A"), 30), []byte("ACGGGGGGG")...) // ref[30] == 'A'
	records := []VariantRecord{
		{Pos: 30, Ref: []byte("A"), Alts: [][]byte{[]byte("G"), []byte("GA")}},
	}
	g, err := BuildGraph(GenomicRegion{Chr: "chr3"}, 0, ref, records)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(g.VarNodes) != 3 {
		t.Fatalf("len(VarNodes) = %d, want 3", len(g.VarNodes))
	}
	if string(g.VarNodes[0].DNA) != "G" || string(g.VarNodes[1].DNA) != "GA" {
		t.Fatalf("unexpected allele order: %q %q", g.VarNodes[0].DNA, g.VarNodes[1].DNA)
	}
	if !g.VarNodes[2].IsRef || string(g.VarNodes[2].DNA) != "A" {
		t.Fatalf("VarNodes[2] = %q IsRef=%v, want ref allele A", g.VarNodes[2].DNA, g.VarNodes[2].IsRef)
	}
	if len(g.RefReachPoses) != 1 || g.RefReachPoses[0] != 30 {
		t.Fatalf("RefReachPoses = %v, want [30]", g.RefReachPoses)
	}
	if len(g.ActualPoses) != 1 || g.ActualPoses[0] != 31 {
		t.Fatalf("ActualPoses = %v, want [31]", g.ActualPoses)
	}
	if got := g.ActualPositionsFor(30); len(got) != 1 || got[0] != 31 {
		t.Fatalf("ActualPositionsFor(30) = %v, want [31]", got)
	}
}

// TestMergeOverlappingProducesSpanLengthAlleles covers two genuinely
// overlapping VariantRecords (not merely adjacent): a 2-base MNP and a
// single-base SNP inside it. Each combined allele must stay within the
// group's 2-base span, overlaying the SNP's edit onto the MNP's allele
// rather than concatenating the two into a 4-base string. The choices
// combine to AT (the SNP alone) and GT (the MNP, with or without the SNP).
func TestMergeOverlappingProducesSpanLengthAlleles(t *testing.T) {
	recs := []VariantRecord{
		{Pos: 20, Ref: []byte("AC"), Alts: [][]byte{[]byte("GT")}},
		{Pos: 21, Ref: []byte("C"), Alts: [][]byte{[]byte("T")}},
	}
	grp, err := mergeOverlapping(recs, 22)
	if err != nil {
		t.Fatalf("mergeOverlapping: %v", err)
	}
	if len(grp.ref) != 2 {
		t.Fatalf("len(grp.ref) = %d, want 2", len(grp.ref))
	}
	for _, a := range grp.alts {
		if len(a) != 2 {
			t.Fatalf("allele %q has length %d, want 2 (the group span)", a, len(a))
		}
	}
	if len(grp.alts) != 2 || string(grp.alts[0]) != "AT" || string(grp.alts[1]) != "GT" {
		t.Fatalf("grp.alts = %q, want [AT GT]", grp.alts)
	}
}

// TestBuildGraphOverlappingVariants runs the same overlap through
// BuildGraph end to end, checking the resulting VarNode.DNA is span-length
// rather than the doubled, malformed length a concatenation bug would
// produce.
func TestBuildGraphOverlappingVariants(t *testing.T) {
	ref := bytes.Repeat([]byte("A"), 20)
	ref = append(ref, []byte("ACGGGG")...)
	records := []VariantRecord{
		{Pos: 20, Ref: []byte("AC"), Alts: [][]byte{[]byte("GT")}},
		{Pos: 21, Ref: []byte("C"), Alts: [][]byte{[]byte("T")}},
	}
	g, err := BuildGraph(GenomicRegion{Chr: "chr4"}, 0, ref, records)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	for _, v := range g.VarNodes {
		if len(v.DNA) != 2 {
			t.Fatalf("VarNode.DNA = %q (len %d), want length 2", v.DNA, len(v.DNA))
		}
	}
}

func TestCheckRejectsNonACGTN(t *testing.T) {
	g := &Graph{
		RefNodes: []RefNode{{Order: 1, DNA: []byte("AXGT")}},
	}
	if err := g.Check(); err == nil {
		t.Fatal("expected Check() to reject non-ACGTN byte")
	}
}

func TestRefSplicesReferenceAllele(t *testing.T) {
	ref := []byte("AAAAACCCCC")
	records := []VariantRecord{
		{Pos: 5, Ref: []byte("C"), Alts: [][]byte{[]byte("T")}},
	}
	g, err := BuildGraph(GenomicRegion{Chr: "chrT"}, 0, ref, records)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	got, err := g.Ref(0, 10)
	if err != nil {
		t.Fatalf("Ref: %v", err)
	}
	if string(got) != string(ref) {
		t.Fatalf("Ref(0,10) = %q, want %q", got, ref)
	}
}
