package vgraph

// Location identifies one byte position inside the graph: either an offset
// into a RefNode's backbone DNA, or an offset into one allele of a bubble.
type Location struct {
	IsVar    bool
	RefIndex int
	VarIndex int
	Offset   int
}

// PathHint lets a caller restrict which alleles of a bubble Graph methods
// are allowed to walk into. align.Path implements this so the graph can be
// queried without vgraph importing the align package back.
type PathHint interface {
	// ForbidsAllele reports whether the path has already committed to a
	// different allele at the bubble starting at varOrder, making varNum
	// unreachable from here.
	ForbidsAllele(varOrder uint32, varNum uint16) bool
}

// noHint never forbids anything; used when callers pass a nil PathHint.
type noHint struct{}

func (noHint) ForbidsAllele(uint32, uint16) bool { return false }
