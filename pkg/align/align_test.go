package align

import (
	"testing"

	"github.com/popgraph/vgtyper/pkg/gtconfig"
	"github.com/popgraph/vgtyper/pkg/kmerindex"
	"github.com/popgraph/vgtyper/pkg/seqio"
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

func buildSNPGraph(t *testing.T) (*vgraph.Graph, *kmerindex.Index) {
	// A pseudo-random backbone with no repeated 16-mer, so a read taken
	// from it has a single placement.
	ref := make([]byte, 0, 200)
	state := uint32(7)
	for i := 0; i < 200; i++ {
		state = state*1103515245 + 12345
		ref = append(ref, "ACGT"[(state>>16)&3])
	}
	ref[100] = 'A'
	records := []vgraph.VariantRecord{
		{Pos: 100, Ref: []byte("A"), Alts: [][]byte{[]byte("G")}},
	}
	g, err := vgraph.BuildGraph(vgraph.GenomicRegion{Chr: "chrT"}, 0, ref, records)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	idx := kmerindex.New(16)
	if err := idx.Build(g); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g, idx
}

func TestAlignReadExactMatch(t *testing.T) {
	g, idx := buildSNPGraph(t)
	ref, err := g.Ref(40, 90)
	if err != nil {
		t.Fatalf("Ref: %v", err)
	}
	opts := gtconfig.DefaultOptions()
	opts.K = 16
	read := &seqio.Read{Sequence: seqio.Sequence{ID: []byte("r1"), Seq: ref}}
	gp, err := AlignRead(g, idx, read, opts, nil)
	if err != nil {
		t.Fatalf("AlignRead: %v", err)
	}
	if len(gp.Paths) == 0 {
		t.Fatal("AlignRead: expected at least one surviving path for an exact reference match")
	}
	for _, p := range gp.Paths {
		if p.Start != 40 {
			t.Errorf("path.Start = %d, want 40", p.Start)
		}
	}
}

func TestAlignReadReverseComplement(t *testing.T) {
	g, idx := buildSNPGraph(t)
	ref, err := g.Ref(40, 90)
	if err != nil {
		t.Fatalf("Ref: %v", err)
	}
	read := &seqio.Read{Sequence: seqio.Sequence{ID: []byte("r2"), Seq: append([]byte(nil), ref...)}}
	read.RevComplement()

	opts := gtconfig.DefaultOptions()
	opts.K = 16
	gp, err := AlignRead(g, idx, read, opts, nil)
	if err != nil {
		t.Fatalf("AlignRead: %v", err)
	}
	found := false
	for _, p := range gp.Paths {
		if p.Reverse && p.Start == 40 {
			found = true
		}
	}
	if !found {
		t.Fatal("AlignRead: expected a reverse-complement path starting at 40")
	}
}

func TestAlignReadDoesNotMixOrientations(t *testing.T) {
	g, idx := buildSNPGraph(t)
	ref, err := g.Ref(40, 90)
	if err != nil {
		t.Fatalf("Ref: %v", err)
	}
	opts := gtconfig.DefaultOptions()
	opts.K = 16
	read := &seqio.Read{Sequence: seqio.Sequence{ID: []byte("r3"), Seq: ref}}
	gp, err := AlignRead(g, idx, read, opts, nil)
	if err != nil {
		t.Fatalf("AlignRead: %v", err)
	}
	sawForward, sawReverse := false, false
	for _, p := range gp.Paths {
		if p.Reverse {
			sawReverse = true
		} else {
			sawForward = true
		}
	}
	if sawForward && sawReverse {
		t.Fatal("AlignRead: returned paths from both orientations, want a single committed strand")
	}
}

func TestCompareGenotypePathsPrefersMorePaths(t *testing.T) {
	fewer := &GenotypePaths{Paths: []*Path{{Start: 0, End: 50, Mismatches: 0}}}
	more := &GenotypePaths{Paths: []*Path{{Start: 0, End: 50, Mismatches: 0}, {Start: 100, End: 150, Mismatches: 0}}}
	if got := compareGenotypePaths(more, fewer); got != 1 {
		t.Fatalf("compareGenotypePaths(more, fewer) = %d, want 1", got)
	}
	if got := selectStrand(fewer, more); got != more {
		t.Fatal("selectStrand did not prefer the candidate with more surviving paths")
	}
}

func TestSelectStrandDropsBothOnExactTie(t *testing.T) {
	fwd := &GenotypePaths{Paths: []*Path{{Start: 0, End: 50, Mismatches: 0}}}
	rev := &GenotypePaths{Paths: []*Path{{Start: 0, End: 50, Mismatches: 0}}}
	if got := selectStrand(fwd, rev); got != nil {
		t.Fatalf("selectStrand on an exact tie = %v, want nil (drop both)", got)
	}
}

func TestBestPathPrefersFewerMismatches(t *testing.T) {
	a := &Path{Mismatches: 2, Alleles: map[uint32]uint16{}}
	b := &Path{Mismatches: 0, Alleles: map[uint32]uint16{}}
	if got := BestPath([]*Path{a, b}); got != b {
		t.Fatal("BestPath did not prefer the path with fewer mismatches")
	}
}
