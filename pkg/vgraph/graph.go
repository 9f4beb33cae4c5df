package vgraph

import (
	"fmt"
	"math"
	"math/rand"
)

// Graph is a variation graph over one genomic region: a backbone of RefNodes
// interleaved with variant bubbles, plus the special-position bookkeeping
// a genotyper requires for insertions that need synthetic absolute
// coordinates.
type Graph struct {
	Region          GenomicRegion
	ReferenceOffset uint32
	RefNodes        []RefNode
	VarNodes        []VarNode
	SVs             []SVDescriptor

	RefReachPoses []uint32
	ActualPoses   []uint32

	refReachToActual map[uint32][]uint32
}

// NodeDNA returns the DNA slice for a Location.
func (g *Graph) NodeDNA(l Location) []byte {
	if l.IsVar {
		return g.VarNodes[l.VarIndex].DNA
	}
	return g.RefNodes[l.RefIndex].DNA
}

// ByteAt returns the base at a Location.
func (g *Graph) ByteAt(l Location) byte {
	return g.NodeDNA(l)[l.Offset]
}

// successors returns the Locations immediately following l, respecting
// hint. Stepping off the end of a node either advances within the same node,
// crosses into the bubble a RefNode opens, or rejoins the RefNode a VarNode
// points at.
func (g *Graph) successors(l Location, hint PathHint) []Location {
	if hint == nil {
		hint = noHint{}
	}
	if l.IsVar {
		v := g.VarNodes[l.VarIndex]
		if l.Offset+1 < len(v.DNA) {
			return []Location{{IsVar: true, VarIndex: l.VarIndex, Offset: l.Offset + 1}}
		}
		refIdx := v.OutRef
		if len(g.RefNodes[refIdx].DNA) == 0 {
			return g.successors(Location{RefIndex: refIdx, Offset: 0}, hint)
		}
		return []Location{{RefIndex: refIdx, Offset: 0}}
	}
	r := g.RefNodes[l.RefIndex]
	if l.Offset+1 < len(r.DNA) {
		return []Location{{RefIndex: l.RefIndex, Offset: l.Offset + 1}}
	}
	if len(r.OutVars) == 0 {
		return nil
	}
	out := make([]Location, 0, len(r.OutVars))
	for _, vi := range r.OutVars {
		v := g.VarNodes[vi]
		if hint.ForbidsAllele(v.Order, v.VarNum) {
			continue
		}
		if len(v.DNA) == 0 {
			out = append(out, g.successors(Location{IsVar: true, VarIndex: vi, Offset: 0}, hint)...)
			continue
		}
		out = append(out, Location{IsVar: true, VarIndex: vi, Offset: 0})
	}
	return out
}

// LocationsOf returns every Location whose absolute reference-projected
// position equals abs, expanding into every allele of a bubble opening
// there that hint does not forbid.
func (g *Graph) LocationsOf(abs uint32, hint PathHint) []Location {
	if hint == nil {
		hint = noHint{}
	}
	var out []Location
	for i, r := range g.RefNodes {
		start := r.Order - 1
		end := start + uint32(len(r.DNA))
		if abs >= start && abs < end {
			out = append(out, Location{RefIndex: i, Offset: int(abs - start)})
			continue
		}
		if abs == end {
			for _, vi := range r.OutVars {
				v := g.VarNodes[vi]
				if hint.ForbidsAllele(v.Order, v.VarNum) {
					continue
				}
				out = append(out, Location{IsVar: true, VarIndex: vi, Offset: 0})
			}
		}
	}
	return out
}

// refProjected returns the backbone-projected absolute position of a
// Location: the position itself for a RefNode offset, or the bubble's
// opening position for any offset inside a VarNode (variant bubbles are
// treated as zero-width for the purpose of backbone distance).
func (g *Graph) refProjected(l Location) int64 {
	if l.IsVar {
		return int64(g.VarNodes[l.VarIndex].Order) - 1
	}
	return int64(g.RefNodes[l.RefIndex].Order) - 1 + int64(l.Offset)
}

// ReferenceDistanceBetween returns every distinct backbone distance between
// a Location in froms and a Location in tos, used by the pair refiner to
// check whether two reads' placements are consistent with the configured
// insert size.
func (g *Graph) ReferenceDistanceBetween(froms, tos []Location) map[int64]struct{} {
	dists := make(map[int64]struct{})
	for _, f := range froms {
		fp := g.refProjected(f)
		for _, t := range tos {
			dists[g.refProjected(t)-fp] = struct{}{}
		}
	}
	return dists
}

// GetLabelsForward walks forward from start matching read against the graph,
// tolerating up to maxMismatches substitutions, and returns one KmerLabel
// per distinct way the full read can be consumed. Each label's
// VariantOrder/VariantNum report the last bubble crossed, 0 if none.
func (g *Graph) GetLabelsForward(start Location, read []byte, maxMismatches int, hint PathHint) []KmerLabel {
	var out []KmerLabel
	startAbs := g.refProjected(start)
	var walk func(loc Location, i, mm int, order uint32, varNum uint16)
	walk = func(loc Location, i, mm int, order uint32, varNum uint16) {
		if i == len(read) {
			out = append(out, KmerLabel{
				Start:        uint32(startAbs),
				End:          uint32(startAbs) + uint32(len(read)),
				VariantOrder: order,
				VariantNum:   varNum,
			})
			return
		}
		if loc.IsVar {
			order, varNum = g.VarNodes[loc.VarIndex].Order, g.VarNodes[loc.VarIndex].VarNum
		}
		step := mm
		if g.ByteAt(loc) != read[i] {
			step++
			if step > maxMismatches {
				return
			}
		}
		for _, next := range g.successors(loc, hint) {
			walk(next, i+1, step, order, varNum)
		}
	}
	walk(start, 0, 0, 0, 0)
	return out
}

// MatchResult is one way of walking a read through the graph from a given
// start Location: where it ended up, how many mismatches it accumulated,
// and which allele it committed to at every bubble it crossed.
type MatchResult struct {
	End        Location
	Mismatches int
	Alleles    map[uint32]uint16
}

// WalkMatch tries to consume read in full starting at start, forking at
// every bubble the walk reaches and tolerating up to maxMismatches
// substitutions overall. It returns one MatchResult per distinct way the
// walk can complete; this is the primitive pkg/align uses to build Path
// values that remember every bubble a read crossed, not just the last one.
func (g *Graph) WalkMatch(start Location, read []byte, maxMismatches int, hint PathHint) []MatchResult {
	var out []MatchResult
	var walk func(loc Location, i, mm int, alleles map[uint32]uint16)
	walk = func(loc Location, i, mm int, alleles map[uint32]uint16) {
		if i == len(read) {
			out = append(out, MatchResult{End: loc, Mismatches: mm, Alleles: alleles})
			return
		}
		next := alleles
		if loc.IsVar {
			v := g.VarNodes[loc.VarIndex]
			if loc.Offset == 0 {
				next = make(map[uint32]uint16, len(alleles)+1)
				for k, v2 := range alleles {
					next[k] = v2
				}
				next[v.Order] = v.VarNum
			}
		}
		step := mm
		if g.ByteAt(loc) != read[i] {
			step++
			if step > maxMismatches {
				return
			}
		}
		for _, nloc := range g.successors(loc, hint) {
			walk(nloc, i+1, step, next)
		}
	}
	walk(start, 0, 0, nil)
	return out
}

// predecessors mirrors successors but walks backward, used by
// GetLabelsBackward to extend a match to the left of a seed.
func (g *Graph) predecessors(l Location, hint PathHint) []Location {
	if hint == nil {
		hint = noHint{}
	}
	if l.IsVar {
		if l.Offset > 0 {
			return []Location{{IsVar: true, VarIndex: l.VarIndex, Offset: l.Offset - 1}}
		}
		for i, r := range g.RefNodes {
			for _, vi := range r.OutVars {
				if vi != l.VarIndex {
					continue
				}
				if len(r.DNA) == 0 {
					return g.predecessors(Location{RefIndex: i, Offset: 0}, hint)
				}
				return []Location{{RefIndex: i, Offset: len(r.DNA) - 1}}
			}
		}
		return nil
	}
	if l.Offset > 0 {
		return []Location{{RefIndex: l.RefIndex, Offset: l.Offset - 1}}
	}
	if l.RefIndex == 0 {
		return nil
	}
	var out []Location
	for vi, v := range g.VarNodes {
		if v.OutRef != l.RefIndex {
			continue
		}
		if hint.ForbidsAllele(v.Order, v.VarNum) {
			continue
		}
		if len(v.DNA) == 0 {
			out = append(out, g.predecessors(Location{IsVar: true, VarIndex: vi, Offset: 0}, hint)...)
			continue
		}
		out = append(out, Location{IsVar: true, VarIndex: vi, Offset: len(v.DNA) - 1})
	}
	if len(out) == 0 {
		prev := g.RefNodes[l.RefIndex-1]
		if len(prev.DNA) > 0 {
			out = append(out, Location{RefIndex: l.RefIndex - 1, Offset: len(prev.DNA) - 1})
		}
	}
	return out
}

// GetLabelsBackward walks backward from end, consuming read right to left.
func (g *Graph) GetLabelsBackward(end Location, read []byte, maxMismatches int, hint PathHint) []KmerLabel {
	var out []KmerLabel
	endAbs := g.refProjected(end)
	var walk func(loc Location, i, mm int, order uint32, varNum uint16)
	walk = func(loc Location, i, mm int, order uint32, varNum uint16) {
		if i == len(read) {
			out = append(out, KmerLabel{
				Start:        uint32(endAbs) - uint32(len(read)) + 1,
				End:          uint32(endAbs) + 1,
				VariantOrder: order,
				VariantNum:   varNum,
			})
			return
		}
		if loc.IsVar {
			order, varNum = g.VarNodes[loc.VarIndex].Order, g.VarNodes[loc.VarIndex].VarNum
		}
		step := mm
		if g.ByteAt(loc) != read[len(read)-1-i] {
			step++
			if step > maxMismatches {
				return
			}
		}
		for _, prev := range g.predecessors(loc, hint) {
			walk(prev, i+1, step, order, varNum)
		}
	}
	walk(end, 0, 0, 0, 0)
	return out
}

// Ref splices the reference-allele path of the graph between two absolute
// positions (inclusive, exclusive), walking the ref allele through any
// bubble in the span.
func (g *Graph) Ref(from, to uint32) ([]byte, error) {
	if to < from {
		return nil, fmt.Errorf("vgraph: Ref: to %d precedes from %d", to, from)
	}
	var out []byte
	locs := g.LocationsOf(from, nil)
	if len(locs) == 0 {
		return nil, fmt.Errorf("vgraph: Ref: no location at %d", from)
	}
	cur := refAllele(locs, g)
	for abs := from; abs < to; {
		out = append(out, g.ByteAt(cur))
		abs++
		if abs >= to {
			break
		}
		next := g.successors(cur, nil)
		cur = refAllele(next, g)
	}
	return out, nil
}

// refAllele picks the reference-allele Location among a set of candidates
// produced at a bubble, falling back to the first candidate when none is
// marked IsRef (plain backbone, no bubble here).
func refAllele(locs []Location, g *Graph) Location {
	for _, l := range locs {
		if l.IsVar && g.VarNodes[l.VarIndex].IsRef {
			return l
		}
	}
	return locs[0]
}

// WalkRandomPath returns one random path through the graph between from and
// to, picking a uniformly random allele at every bubble it passes through.
func (g *Graph) WalkRandomPath(from, to uint32, rng *rand.Rand) ([]byte, error) {
	if to < from {
		return nil, fmt.Errorf("vgraph: WalkRandomPath: to %d precedes from %d", to, from)
	}
	locs := g.LocationsOf(from, nil)
	if len(locs) == 0 {
		return nil, fmt.Errorf("vgraph: WalkRandomPath: no location at %d", from)
	}
	cur := locs[rng.Intn(len(locs))]
	var out []byte
	for abs := from; abs < to; abs++ {
		out = append(out, g.ByteAt(cur))
		if abs+1 >= to {
			break
		}
		next := g.successors(cur, nil)
		if len(next) == 0 {
			break
		}
		cur = next[rng.Intn(len(next))]
	}
	return out, nil
}

// Get10Log10NumPaths returns the graph-complexity score for the bubble
// opening at order: 10*log10 of the product of allele counts over every
// bubble in [order, order+maxDistance], the graph-complexity auxiliary
// statistic a genotyper weights calls by. Bubbles are independent, so the
// path count within the window is the product of each bubble's allele
// count. At maxDistance 0 only the bubble at order contributes, so the
// score is exactly 10*log10(|alleles|) for that bubble; widening the
// window can only add further non-negative terms, so the score never
// decreases as maxDistance grows. The result is clamped to fit a uint8.
func (g *Graph) Get10Log10NumPaths(order, maxDistance uint32) uint8 {
	logPaths := 0.0
	for _, r := range g.RefNodes {
		bubbleOrder := r.Order + uint32(len(r.DNA))
		if bubbleOrder < order || bubbleOrder > order+maxDistance {
			continue
		}
		if len(r.OutVars) > 1 {
			logPaths += math.Log10(float64(len(r.OutVars)))
		}
	}
	score := 10 * logPaths
	switch {
	case score < 0:
		return 0
	case score > 255:
		return 255
	default:
		return uint8(score)
	}
}
