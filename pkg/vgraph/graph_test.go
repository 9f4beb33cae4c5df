package vgraph

import "testing"

func testSNPGraph(t *testing.T) *Graph {
	ref := []byte("AAAAACCCCC")
	records := []VariantRecord{
		{Pos: 5, Ref: []byte("C"), Alts: [][]byte{[]byte("T")}},
	}
	g, err := BuildGraph(GenomicRegion{Chr: "chrT"}, 0, ref, records)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	return g
}

func TestLocationsOfBubble(t *testing.T) {
	g := testSNPGraph(t)
	locs := g.LocationsOf(5, nil)
	if len(locs) != 2 {
		t.Fatalf("LocationsOf(5) = %d locations, want 2", len(locs))
	}
	for _, l := range locs {
		if !l.IsVar {
			t.Errorf("LocationsOf(5) returned a non-variant location: %+v", l)
		}
	}
}

func TestGetLabelsForwardAcrossBubble(t *testing.T) {
	g := testSNPGraph(t)
	start := Location{RefIndex: 0, Offset: 0}
	labels := g.GetLabelsForward(start, []byte("AAAAAT"), 0, nil)
	if len(labels) != 1 {
		t.Fatalf("GetLabelsForward (alt path) = %d labels, want 1 for AAAAAT", len(labels))
	}
	if labels[0].VariantOrder == 0 {
		t.Errorf("expected GetLabelsForward to report crossing the bubble")
	}

	labels = g.GetLabelsForward(start, []byte("AAAAAC"), 0, nil)
	if len(labels) != 1 {
		t.Fatalf("GetLabelsForward (ref path) = %d labels, want 1 for AAAAAC", len(labels))
	}
}

func TestWalkMatchRecordsAllele(t *testing.T) {
	g := testSNPGraph(t)
	start := Location{RefIndex: 0, Offset: 0}
	results := g.WalkMatch(start, []byte("AAAAAC"), 0, nil)
	if len(results) != 1 {
		t.Fatalf("WalkMatch = %d results, want 1", len(results))
	}
	if got := results[0].Alleles[6]; got != 1 {
		t.Fatalf("WalkMatch allele at order 6 = %d, want 1 (reference allele)", got)
	}
}

func TestReferenceDistanceBetween(t *testing.T) {
	g := testSNPGraph(t)
	froms := g.LocationsOf(0, nil)
	tos := g.LocationsOf(9, nil)
	dists := g.ReferenceDistanceBetween(froms, tos)
	if _, ok := dists[9]; !ok {
		t.Fatalf("ReferenceDistanceBetween(0,9) = %v, want to contain 9", dists)
	}
}

func TestGet10Log10NumPathsBoundedAndNonDecreasing(t *testing.T) {
	ref := make([]byte, 0, 100)
	for i := 0; i < 100; i++ {
		ref = append(ref, "ACGT"[i%4])
	}
	records := []VariantRecord{
		{Pos: 10, Ref: []byte("A"), Alts: [][]byte{[]byte("G")}},
		{Pos: 80, Ref: []byte("A"), Alts: [][]byte{[]byte("T"), []byte("C")}},
	}
	g, err := BuildGraph(GenomicRegion{Chr: "chrT"}, 0, ref, records)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	firstOrder := g.RefNodes[0].Order + uint32(len(g.RefNodes[0].DNA))

	base := g.Get10Log10NumPaths(firstOrder, 0)
	if base != 3 { // 10*log10(2) rounds down to 3
		t.Errorf("Get10Log10NumPaths(firstOrder, 0) = %d, want 3 (single two-allele bubble)", base)
	}
	wide := g.Get10Log10NumPaths(firstOrder, 100)
	if wide < base {
		t.Errorf("Get10Log10NumPaths(firstOrder, 100) = %d, want >= %d (non-decreasing in distance)", wide, base)
	}
}
