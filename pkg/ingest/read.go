package ingest

import (
	"github.com/biogo/hts/sam"
)

// AlignedRead wraps a biogo/hts sam.Record with the small set of accessors
// the alignment and depth pipeline actually reads, the same way groot's
// GrootGraph.AlignRead builds *sam.Record values directly rather than
// introducing its own read type (src/graph/alignment.go). Wrapping rather
// than embedding keeps the RG/AS/XS tag lookups next to the fields that use
// them instead of scattered across call sites.
type AlignedRead struct {
	rec *sam.Record
}

// NewAlignedRead wraps an already-parsed sam.Record.
func NewAlignedRead(rec *sam.Record) *AlignedRead {
	return &AlignedRead{rec: rec}
}

// Record returns the underlying sam.Record.
func (r *AlignedRead) Record() *sam.Record {
	return r.rec
}

// Bases returns the read sequence.
func (r *AlignedRead) Bases() []byte {
	return r.rec.Seq.Expand()
}

// Qualities returns the per-base phred quality scores.
func (r *AlignedRead) Qualities() []byte {
	return r.rec.Qual
}

// MapQ returns the mapping quality.
func (r *AlignedRead) MapQ() uint8 {
	return uint8(r.rec.MapQ)
}

// CigarString returns the CIGAR in its textual form.
func (r *AlignedRead) CigarString() string {
	return r.rec.Cigar.String()
}

// Flags returns the raw SAM flag bits.
func (r *AlignedRead) Flags() sam.Flags {
	return r.rec.Flags
}

// OriginalPos returns the 0-based leftmost mapping position as reported by
// the upstream aligner, before any graph realignment.
func (r *AlignedRead) OriginalPos() int {
	return r.rec.Pos
}

// IsReverse reports whether the read is mapped to the reverse strand.
func (r *AlignedRead) IsReverse() bool {
	return r.rec.Flags&sam.Reverse != 0
}

// IsFirstInPair reports whether this read is the first segment of a pair.
func (r *AlignedRead) IsFirstInPair() bool {
	return r.rec.Flags&sam.Read1 != 0
}

// IsProperPair reports whether the SAM flags mark this read as part of a
// properly paired alignment.
func (r *AlignedRead) IsProperPair() bool {
	return r.rec.Flags&sam.ProperPair != 0
}

// IsUnmapped reports whether the upstream aligner left this read unmapped.
func (r *AlignedRead) IsUnmapped() bool {
	return r.rec.Flags&sam.Unmapped != 0
}

// IsClipped reports whether the upstream aligner's CIGAR soft- or
// hard-clipped any part of this read.
func (r *AlignedRead) IsClipped() bool {
	for _, op := range r.rec.Cigar {
		switch op.Type() {
		case sam.CigarSoftClipped, sam.CigarHardClipped:
			return true
		}
	}
	return false
}

// tagString looks up a two-letter aux tag and returns its string value,
// or "" if absent or not string-typed.
func (r *AlignedRead) tagString(tag string) string {
	aux := r.rec.AuxFields.Get(sam.NewTag(tag))
	if aux == nil {
		return ""
	}
	s, ok := aux.Value().(string)
	if !ok {
		return ""
	}
	return s
}

// ReadGroup returns the RG tag value, the read's read-group ID.
func (r *AlignedRead) ReadGroup() string {
	return r.tagString("RG")
}

// AlignmentScore returns the AS tag value (the aligner's reported
// alignment score), or 0 if absent or not integer-typed.
func (r *AlignedRead) AlignmentScore() int {
	aux := r.rec.AuxFields.Get(sam.NewTag("AS"))
	if aux == nil {
		return 0
	}
	switch n := aux.Value().(type) {
	case int8:
		return int(n)
	case uint8:
		return int(n)
	case int16:
		return int(n)
	case uint16:
		return int(n)
	case int32:
		return int(n)
	case uint32:
		return int(n)
	}
	return 0
}

// SuboptimalScore returns the XS tag value (the aligner's best alternative
// alignment score), used as a mapping-ambiguity signal.
func (r *AlignedRead) SuboptimalScore() int {
	aux := r.rec.AuxFields.Get(sam.NewTag("XS"))
	if aux == nil {
		return 0
	}
	switch n := aux.Value().(type) {
	case int8:
		return int(n)
	case uint8:
		return int(n)
	case int16:
		return int(n)
	case uint16:
		return int(n)
	case int32:
		return int(n)
	case uint32:
		return int(n)
	}
	return 0
}
