// Package align implements the graph-walk read aligner: seeding from the
// k-mer index, extending seeds across the graph with a bounded mismatch
// budget, and turning successful walks into Path/GenotypePaths values the
// pair refiner and genotyper consume.
package align

import "github.com/popgraph/vgtyper/pkg/vgraph"

// Path is one way a read was successfully walked through the graph: its
// absolute span, how many mismatches it cost, and which allele it committed
// to at every bubble it crossed. Path implements vgraph.PathHint so a graph
// query already anchored to one path can be restricted to alleles
// consistent with it.
type Path struct {
	Start      uint32
	End        uint32
	Mismatches int
	Alleles    map[uint32]uint16
	Reverse    bool
}

// ForbidsAllele implements vgraph.PathHint.
func (p *Path) ForbidsAllele(varOrder uint32, varNum uint16) bool {
	got, ok := p.Alleles[varOrder]
	return ok && got != varNum
}

// CrossesVariant reports whether the path commits to any non-reference
// allele.
func (p *Path) CrossesVariant(g *vgraph.Graph) bool {
	for order, num := range p.Alleles {
		if !isRefAllele(g, order, num) {
			return true
		}
	}
	return false
}

func isRefAllele(g *vgraph.Graph, order uint32, num uint16) bool {
	for _, v := range g.VarNodes {
		if v.Order == order && v.VarNum == num {
			return v.IsRef
		}
	}
	return false
}

// GenotypePaths is every Path found for one read against one graph, the
// unit the pair refiner and genotyper operate on.
type GenotypePaths struct {
	ReadName string
	Length   int
	Paths    []*Path

	// MLInsertSize is the signed maximum-likelihood insert size the pair
	// refiner estimated for this mate, left at zero until Refine runs. A
	// mate and its partner carry opposite signs of the same magnitude.
	MLInsertSize int64
}

// BestPath returns the path with fewest mismatches among a single
// candidate's surviving paths, preferring the one that commits to the most
// alleles (more graph-specific) on a tie. Strand selection itself is
// handled earlier, by compareGenotypePaths in align.go; BestPath only
// breaks ties within whichever orientation already won.
func BestPath(paths []*Path) *Path {
	if len(paths) == 0 {
		return nil
	}
	best := paths[0]
	for _, p := range paths[1:] {
		if better(p, best) {
			best = p
		}
	}
	return best
}

func better(a, b *Path) bool {
	if a.Mismatches != b.Mismatches {
		return a.Mismatches < b.Mismatches
	}
	return len(a.Alleles) > len(b.Alleles)
}
