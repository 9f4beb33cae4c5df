package pairrefine

import (
	"testing"

	"github.com/popgraph/vgtyper/pkg/align"
	"github.com/popgraph/vgtyper/pkg/gtconfig"
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

func flatGraph(t *testing.T) *vgraph.Graph {
	ref := make([]byte, 500)
	for i := range ref {
		ref[i] = "ACGT"[i%4]
	}
	g, err := vgraph.BuildGraph(vgraph.GenomicRegion{Chr: "chrT"}, 0, ref, nil)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	return g
}

func TestInsertSizeOnBackbone(t *testing.T) {
	g := flatGraph(t)
	mate1 := &align.Path{Start: 10, End: 110, Alleles: map[uint32]uint16{}}
	mate2 := &align.Path{Start: 300, End: 400, Alleles: map[uint32]uint16{}}
	got := InsertSize(g, mate1, mate2, 400, false)
	if got != 390 {
		t.Fatalf("InsertSize = %d, want 390", got)
	}
}

func TestRemoveDistantPathsKeepsConsistentPair(t *testing.T) {
	g := flatGraph(t)
	close1 := &align.Path{Start: 0, End: 100, Alleles: map[uint32]uint16{}}
	close2 := &align.Path{Start: 300, End: 400, Alleles: map[uint32]uint16{}}
	far2 := &align.Path{Start: 450, End: 490, Alleles: map[uint32]uint16{}}

	geno1 := &align.GenotypePaths{Paths: []*align.Path{close1}}
	geno2 := &align.GenotypePaths{Paths: []*align.Path{close2, far2}}

	RemoveDistantPaths(g, geno1, geno2, 10, 400, false)
	if len(geno1.Paths) != 1 {
		t.Fatalf("geno1.Paths = %d, want 1", len(geno1.Paths))
	}
	if len(geno2.Paths) != 1 || geno2.Paths[0] != close2 {
		t.Fatalf("geno2.Paths = %v, want only close2", geno2.Paths)
	}
}

func TestRefineDisabledByDefault(t *testing.T) {
	g := flatGraph(t)
	geno1 := &align.GenotypePaths{Paths: []*align.Path{{Start: 0, End: 100, Alleles: map[uint32]uint16{}}}}
	geno2 := &align.GenotypePaths{Paths: []*align.Path{{Start: 450, End: 490, Alleles: map[uint32]uint16{}}}}
	opts := gtconfig.DefaultOptions()
	Refine(g, geno1, geno2, opts, false)
	if len(geno1.Paths) != 1 || len(geno2.Paths) != 1 {
		t.Fatal("Refine should not drop paths by distance when FilterOnInsertSize is false")
	}
}

func TestRefineRecordsSignedInsertSize(t *testing.T) {
	g := flatGraph(t)
	mate1 := &align.Path{Start: 37, End: 87, Alleles: map[uint32]uint16{37: 0}}
	mate2 := &align.Path{Start: 287, End: 337, Alleles: map[uint32]uint16{}}
	geno1 := &align.GenotypePaths{Paths: []*align.Path{mate1}}
	geno2 := &align.GenotypePaths{Paths: []*align.Path{mate2}}

	opts := gtconfig.DefaultOptions()
	opts.OptimalInsertSize = 400
	Refine(g, geno1, geno2, opts, false)

	if len(geno1.Paths) != 1 || len(geno2.Paths) != 1 {
		t.Fatalf("Refine dropped a consistent pair: geno1=%d paths, geno2=%d paths", len(geno1.Paths), len(geno2.Paths))
	}
	if geno1.MLInsertSize != 300 {
		t.Fatalf("geno1.MLInsertSize = %d, want 300", geno1.MLInsertSize)
	}
	if geno2.MLInsertSize != -300 {
		t.Fatalf("geno2.MLInsertSize = %d, want -300", geno2.MLInsertSize)
	}
}

func TestCoSupportedDetectsConflictingAlleles(t *testing.T) {
	p1 := &align.Path{Alleles: map[uint32]uint16{37: 0}}
	p2 := &align.Path{Alleles: map[uint32]uint16{37: 1}}
	if CoSupported(p1, p2) {
		t.Fatal("CoSupported should reject paths that disagree on a shared bubble's allele")
	}
	p3 := &align.Path{Alleles: map[uint32]uint16{37: 0}}
	if !CoSupported(p1, p3) {
		t.Fatal("CoSupported should accept paths that agree on a shared bubble's allele")
	}
}

func TestRemoveUnsupportedPathsDropsConflictingCombination(t *testing.T) {
	refAllele := &align.Path{Start: 0, End: 50, Alleles: map[uint32]uint16{37: 0}}
	altAllele := &align.Path{Start: 400, End: 450, Alleles: map[uint32]uint16{37: 1}}
	consistent := &align.Path{Start: 400, End: 450, Alleles: map[uint32]uint16{37: 0}}

	geno1 := &align.GenotypePaths{Paths: []*align.Path{refAllele}}
	geno2 := &align.GenotypePaths{Paths: []*align.Path{altAllele, consistent}}

	RemoveUnsupportedPaths(geno1, geno2)
	if len(geno1.Paths) != 1 {
		t.Fatalf("geno1.Paths = %d, want 1 (refAllele stays, it agrees with consistent)", len(geno1.Paths))
	}
	if len(geno2.Paths) != 1 || geno2.Paths[0] != consistent {
		t.Fatalf("geno2.Paths = %v, want only consistent (altAllele conflicts with refAllele)", geno2.Paths)
	}
}
