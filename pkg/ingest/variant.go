// Package ingest holds the thin, concrete types the CLI parses input into
// before handing it to the core packages: raw variant records from a
// VCF-like source, aligned reads from a BAM/SAM source, and the sample
// roster derived from read-group headers. None of this package parses
// FASTA, VCF, or BAM itself; it only shapes already-parsed records the way
// vgraph.BuildGraph, align, and depth expect them.
package ingest

import (
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

// VariantRecord is a known variant as read from an external source: a
// contig name and a position relative to that contig, rather than the
// absolute coordinate vgraph.BuildGraph requires.
type VariantRecord struct {
	Chr  string
	Pos  uint32
	Ref  []byte
	Alts [][]byte
}

// ToGraphRecord converts a contig-relative VariantRecord into the absolute
// form vgraph.BuildGraph consumes, given the contig's absolute offset (as
// returned by a coord.Service).
func (v VariantRecord) ToGraphRecord(contigOffset uint32) vgraph.VariantRecord {
	return vgraph.VariantRecord{
		Pos:  contigOffset + v.Pos,
		Ref:  v.Ref,
		Alts: v.Alts,
	}
}
