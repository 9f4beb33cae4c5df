// Package vgraph implements the variation graph: an ordered sequence of
// reference nodes and variant-bubble nodes built from a reference sequence
// augmented with known alternate alleles, plus the topology queries the
// aligner and genotyper need against it.
package vgraph

// RefNode is a reference-allele node. Order is the node's absolute start
// position plus one (0 is reserved so a zero value never looks like a real
// position). OutVars lists, in allele order, the VarNodes that fan out a
// bubble opening at this locus; an empty OutVars marks a terminal node (the
// region's end).
type RefNode struct {
	Order   uint32
	DNA     []byte
	OutVars []int
}

// VarNode is a variant-allele node. Order matches the order of the bubble's
// RefNode start. DNA may be empty (deletions) or hold the <SV:NNNNNNN>
// escape for large variants. OutRef is the index of the single RefNode the
// bubble rejoins.
//
// VarNum is this allele's position within its bubble. By construction,
// alternate alleles are numbered first (0..len(alts)-1) and the reference
// allele is numbered last (len(alts)); IsRef marks that one node so callers
// don't have to rely on index arithmetic.
type VarNode struct {
	Order  uint32
	DNA    []byte
	OutRef int
	VarNum uint16
	IsRef  bool
}

// GenomicRegion is a half-open interval in contig coordinates.
type GenomicRegion struct {
	RID   int
	Chr   string
	Begin uint32
	End   uint32
}

// SVDescriptor is the out-of-line record a <SV:NNNNNNN> escape in a VarNode's
// DNA refers to. IDs are region-local: a graph numbers its own SVs starting
// at 0 and the 7-digit zero-padded decimal id is only meaningful alongside
// the Graph that produced it.
type SVDescriptor struct {
	ID     int
	Kind   string
	Length int
}
