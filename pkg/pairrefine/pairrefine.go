// Package pairrefine refines a pair of aligned mates against each other:
// estimating their insert size from the graph's backbone distance,
// recording it with opposite signs on each mate, dropping path
// combinations that disagree on a bubble they both cover, and optionally
// dropping combinations whose insert size is implausible.
package pairrefine

import (
	"github.com/popgraph/vgtyper/pkg/align"
	"github.com/popgraph/vgtyper/pkg/gtconfig"
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

// farDistance stands in for "no plausible distance found", mirroring
// get_insert_size's 0xFFFFFFFF sentinel.
const farDistance int64 = 0xFFFFFFFF

// InsertSize returns the backbone distance between mate1's start and
// mate2's end (or, for mates sequenced as reverse complements of each
// other, mate2's start and mate1's end) that is closest to optimal, the
// generalization of get_insert_size to a single pair of paths.
func InsertSize(g *vgraph.Graph, mate1, mate2 *align.Path, optimal uint32, reverseComplement bool) int64 {
	var froms, tos []vgraph.Location
	if reverseComplement {
		froms = g.LocationsOf(mate2.Start, mate2)
		tos = g.LocationsOf(mate1.End, mate1)
	} else {
		froms = g.LocationsOf(mate1.Start, mate1)
		tos = g.LocationsOf(mate2.End, mate2)
	}
	dists := g.ReferenceDistanceBetween(froms, tos)
	if len(dists) == 0 {
		return farDistance
	}
	best := int64(optimal) + farDistance
	for d := range dists {
		if abs64(d-int64(optimal)) < abs64(best-int64(optimal)) {
			best = d
		}
	}
	return best
}

// ShortestDistance returns, over every combination of a path from geno1 and
// a path from geno2, the insert size closest to optimal.
func ShortestDistance(g *vgraph.Graph, geno1, geno2 *align.GenotypePaths, optimal uint32, reverseComplement bool) int64 {
	shortestDiff := int64(optimal) + farDistance
	shortest := farDistance
	for _, p1 := range geno1.Paths {
		for _, p2 := range geno2.Paths {
			d := InsertSize(g, p1, p2, optimal, reverseComplement)
			diff := abs64(d - int64(optimal))
			if diff < shortestDiff {
				shortestDiff = diff
				shortest = d
			}
		}
	}
	return shortest
}

// RemoveDistantPaths drops every path of geno1 that has no path in geno2
// within shortestDistance of optimal (and vice versa), the way
// remove_distant_paths prunes path combinations once a pair's best insert
// size is known. If this empties geno1 entirely, both genotypePaths are
// cleared rather than left with one side pruned and the other not.
func RemoveDistantPaths(g *vgraph.Graph, geno1, geno2 *align.GenotypePaths, shortestDistance int64, optimal uint32, reverseComplement bool) {
	geno1.Paths = keepClose(g, geno1.Paths, geno2.Paths, shortestDistance, optimal, reverseComplement, false)
	if len(geno1.Paths) == 0 {
		geno2.Paths = nil
		return
	}
	geno2.Paths = keepClose(g, geno2.Paths, geno1.Paths, shortestDistance, optimal, reverseComplement, true)
}

func keepClose(g *vgraph.Graph, these, others []*align.Path, shortestDistance int64, optimal uint32, reverseComplement, flip bool) []*align.Path {
	var kept []*align.Path
	for _, p := range these {
		for _, o := range others {
			mate1, mate2 := p, o
			if flip {
				mate1, mate2 = o, p
			}
			d := abs64(InsertSize(g, mate1, mate2, optimal, reverseComplement) - int64(optimal))
			if d <= shortestDistance {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}

// CoSupported reports whether p1 and p2 agree on every bubble they both
// cover. Each Path commits to a single allele per bubble rather than a
// bitset of surviving haplotype clusters, so the "intersection of nums is
// non-empty" co-support test reduces to agreement on the shared bubbles.
func CoSupported(p1, p2 *align.Path) bool {
	for order, num := range p1.Alleles {
		if num2, ok := p2.Alleles[order]; ok && num2 != num {
			return false
		}
	}
	return true
}

// RemoveUnsupportedPaths drops every path of geno1 that disagrees with
// every path of geno2 on some bubble they both cover (and vice versa),
// flagging and dropping co-support-inconsistent combinations. Unlike
// RemoveDistantPaths this runs unconditionally: co-support is not gated by
// FilterOnInsertSize. If this empties geno1 entirely, both are cleared.
func RemoveUnsupportedPaths(geno1, geno2 *align.GenotypePaths) {
	geno1.Paths = keepSupported(geno1.Paths, geno2.Paths)
	if len(geno1.Paths) == 0 {
		geno2.Paths = nil
		return
	}
	geno2.Paths = keepSupported(geno2.Paths, geno1.Paths)
}

func keepSupported(these, others []*align.Path) []*align.Path {
	var kept []*align.Path
	for _, p := range these {
		for _, o := range others {
			if CoSupported(p, o) {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}

// Refine records the signed maximum-likelihood insert size on each mate,
// drops co-support-inconsistent path combinations, and, when
// opts.FilterOnInsertSize is enabled, also prunes combinations whose
// insert size is implausible. GraphTyper itself ships that last gate
// compiled out; it defaults to off here for the same reason, and
// RemoveDistantPaths/ShortestDistance remain usable directly by callers
// that want it regardless of the option.
func Refine(g *vgraph.Graph, geno1, geno2 *align.GenotypePaths, opts *gtconfig.Options, reverseComplement bool) {
	if len(geno1.Paths) == 0 || len(geno2.Paths) == 0 {
		return
	}

	shortest := ShortestDistance(g, geno1, geno2, opts.OptimalInsertSize, reverseComplement)
	if shortest != farDistance {
		geno1.MLInsertSize = shortest
		geno2.MLInsertSize = -shortest
	}

	RemoveUnsupportedPaths(geno1, geno2)
	if len(geno1.Paths) == 0 || len(geno2.Paths) == 0 {
		return
	}

	if !opts.FilterOnInsertSize {
		return
	}
	RemoveDistantPaths(g, geno1, geno2, abs64(shortest-int64(opts.OptimalInsertSize)), opts.OptimalInsertSize, reverseComplement)
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
