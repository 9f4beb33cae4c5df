package vgraph

import (
	"fmt"
	"sort"
)

// VariantRecord is one input variant: an absolute 0-based position, its
// reference allele, and its alternate alleles. Pos+len(Ref) must not run
// past the end of the region being built.
type VariantRecord struct {
	Pos  uint32
	Ref  []byte
	Alts [][]byte
}

// BuildGraph constructs a Graph for one region from its reference bases and
// a sorted list of known variants. Variants whose reference span overlaps
// are merged into a single bubble whose alleles enumerate the Cartesian
// product of the independent choices, left-aligned on the shared anchor;
// variants that are merely adjacent, not overlapping, remain separate
// bubbles joined by a (possibly empty) RefNode.
func BuildGraph(region GenomicRegion, referenceOffset uint32, ref []byte, records []VariantRecord) (*Graph, error) {
	recs := append([]VariantRecord(nil), records...)
	sort.Slice(recs, func(i, j int) bool { return recs[i].Pos < recs[j].Pos })

	groups, err := groupOverlapping(recs)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Region:           region,
		ReferenceOffset:  referenceOffset,
		refReachToActual: make(map[uint32][]uint32),
	}

	cursor := referenceOffset
	var pending []int
	for _, grp := range groups {
		if grp.pos < cursor {
			return nil, fmt.Errorf("vgraph: variant at %d overlaps already-consumed reference", grp.pos)
		}
		refIdx := len(g.RefNodes)
		g.RefNodes = append(g.RefNodes, RefNode{
			Order: cursor + 1,
			DNA:   sliceRef(ref, referenceOffset, cursor, grp.pos),
		})
		for _, vi := range pending {
			g.VarNodes[vi].OutRef = refIdx
		}

		varIndices := make([]int, 0, len(grp.alts)+1)
		for i, alt := range grp.alts {
			idx := len(g.VarNodes)
			g.VarNodes = append(g.VarNodes, VarNode{
				Order:  grp.pos + 1,
				DNA:    append([]byte(nil), alt...),
				OutRef: -1,
				VarNum: uint16(i),
			})
			varIndices = append(varIndices, idx)
		}
		refAlleleIdx := len(g.VarNodes)
		g.VarNodes = append(g.VarNodes, VarNode{
			Order:  grp.pos + 1,
			DNA:    append([]byte(nil), grp.ref...),
			OutRef: -1,
			VarNum: uint16(len(grp.alts)),
			IsRef:  true,
		})
		varIndices = append(varIndices, refAlleleIdx)

		g.RefNodes[refIdx].OutVars = varIndices
		registerSpecialPositions(g, grp.pos+1, grp.ref, grp.alts)

		cursor = grp.pos + uint32(len(grp.ref))
		pending = varIndices
	}

	finalIdx := len(g.RefNodes)
	g.RefNodes = append(g.RefNodes, RefNode{
		Order: cursor + 1,
		DNA:   sliceRef(ref, referenceOffset, cursor, referenceOffset+uint32(len(ref))),
	})
	for _, vi := range pending {
		g.VarNodes[vi].OutRef = finalIdx
	}

	if err := g.Check(); err != nil {
		return nil, err
	}
	return g, nil
}

func sliceRef(ref []byte, refOffset, from, to uint32) []byte {
	if to <= from {
		return nil
	}
	out := make([]byte, to-from)
	copy(out, ref[from-refOffset:to-refOffset])
	return out
}

// bubbleGroup is one or more overlapping VariantRecords merged into a
// single bubble's worth of alleles.
type bubbleGroup struct {
	pos  uint32
	ref  []byte
	alts [][]byte
}

// groupOverlapping merges VariantRecords whose reference span intersects a
// neighbor's into one bubbleGroup via a left-aligned Cartesian product, and
// passes non-overlapping records through as singleton groups.
func groupOverlapping(recs []VariantRecord) ([]bubbleGroup, error) {
	var groups []bubbleGroup
	i := 0
	for i < len(recs) {
		j := i + 1
		end := recs[i].Pos + uint32(len(recs[i].Ref))
		for j < len(recs) && recs[j].Pos < end {
			if e := recs[j].Pos + uint32(len(recs[j].Ref)); e > end {
				end = e
			}
			j++
		}
		if j == i+1 {
			groups = append(groups, bubbleGroup{pos: recs[i].Pos, ref: recs[i].Ref, alts: recs[i].Alts})
		} else {
			merged, err := mergeOverlapping(recs[i:j], end)
			if err != nil {
				return nil, err
			}
			groups = append(groups, merged)
		}
		i = j
	}
	return groups, nil
}

// mergeOverlapping combines a run of overlapping VariantRecords into one
// bubbleGroup spanning [recs[0].Pos, end). Each record contributes either
// its own reference or one of its alts at its own offset (positions no
// record changes keep the shared reference), and the alleles produced are
// the Cartesian product of those choices across records, truncated to
// distinct byte strings other than the shared reference.
func mergeOverlapping(recs []VariantRecord, end uint32) (bubbleGroup, error) {
	start := recs[0].Pos
	span := int(end - start)
	refOut := make([]byte, span)
	for _, r := range recs {
		off := int(r.Pos - start)
		if off+len(r.Ref) > span {
			return bubbleGroup{}, fmt.Errorf("vgraph: merged variant reference allele runs past group end")
		}
		copy(refOut[off:], r.Ref)
	}

	// combos starts as a single candidate equal to the shared reference.
	// Each record keeps every running combo as it is (its reference choice)
	// and adds one copy per alt with that alt overlaid in place (at
	// positions the record doesn't cover, the copy keeps whatever the combo
	// already had - the shared reference, or an earlier record's edit).
	combos := [][]byte{append([]byte(nil), refOut...)}
	for _, r := range recs {
		off := int(r.Pos - start)
		refEnd := off + len(r.Ref)
		next := make([][]byte, 0, len(combos)*(len(r.Alts)+1))
		for _, base := range combos {
			next = append(next, base)
			for _, alt := range r.Alts {
				allele := append([]byte(nil), base...)
				altEnd := off + len(alt)
				if altEnd > span {
					altEnd = span
				}
				copy(allele[off:altEnd], alt)
				if altEnd < refEnd {
					copy(allele[altEnd:refEnd], refOut[altEnd:refEnd])
				}
				next = append(next, allele)
			}
		}
		combos = next
	}

	seen := make(map[string]bool)
	var alts [][]byte
	for _, c := range combos {
		k := string(c)
		if seen[k] || k == string(refOut) {
			continue
		}
		seen[k] = true
		alts = append(alts, c)
	}
	return bubbleGroup{pos: start, ref: refOut, alts: alts}, nil
}
