package vgraph

// registerSpecialPositions records the synthetic absolute positions an
// insertion allele needs. For a bubble whose longest allele is longer than
// the reference allele, each extra base beyond the reference's length gets
// one synthetic "actual" position, and all of them share the same
// "ref reach" position: the last absolute coordinate still common to every
// allele, one base before the bubble opens.
func registerSpecialPositions(g *Graph, order uint32, ref []byte, alts [][]byte) {
	maxLen := len(ref)
	for _, a := range alts {
		if len(a) > maxLen {
			maxLen = len(a)
		}
	}
	extra := maxLen - len(ref)
	if extra <= 0 {
		return
	}
	refReach := order - 1
	for i := 0; i < extra; i++ {
		actual := order + uint32(i)
		g.RefReachPoses = append(g.RefReachPoses, refReach)
		g.ActualPoses = append(g.ActualPoses, actual)
		g.refReachToActual[refReach] = append(g.refReachToActual[refReach], actual)
	}
}

// ActualPositionsFor returns the synthetic actual positions registered
// against a given ref-reach position, in registration order.
func (g *Graph) ActualPositionsFor(refReach uint32) []uint32 {
	return g.refReachToActual[refReach]
}
