// Package seqio holds small sequence types and helpers shared by the
// aligner and ingest layers: base-alphabet checking and reverse
// complementation of read sequences.
package seqio

import "unicode"

// complementBases is the lookup table used during reverse complementation.
var complementBases = []byte{
	'A': 'T',
	'T': 'A',
	'C': 'G',
	'G': 'C',
	'N': 'N',
}

// Sequence is a bare byte sequence with an identifier, the base unit the
// rest of the module builds on.
type Sequence struct {
	ID  []byte
	Seq []byte
}

// Read holds one sequencing read: bases, qualities, and the bookkeeping the
// aligner needs to track which strand it currently represents.
type Read struct {
	Sequence
	Qual []byte
	// RC is true once the sequence has been reverse complemented relative
	// to how it was read off the instrument.
	RC bool
}

// BaseCheck upper-cases the sequence and folds any non-ACGTN byte to N,
// the way groot's Sequence.BaseCheck does, so every downstream consumer of
// a Sequence can assume the ACGTN alphabet invariant.
func (s *Sequence) BaseCheck() {
	for i, j := 0, len(s.Seq); i < j; i++ {
		switch base := unicode.ToUpper(rune(s.Seq[i])); base {
		case 'A', 'C', 'G', 'T', 'N':
			s.Seq[i] = byte(base)
		default:
			s.Seq[i] = 'N'
		}
	}
}

// RevComplement reverse complements the read in place and flips the RC
// flag, mirroring FASTQread.RevComplement.
func (r *Read) RevComplement() {
	for i, j := 0, len(r.Seq); i < j; i++ {
		r.Seq[i] = complementBases[r.Seq[i]]
	}
	for i, j := 0, len(r.Seq)-1; i <= j; i, j = i+1, j-1 {
		r.Seq[i], r.Seq[j] = r.Seq[j], r.Seq[i]
	}
	if len(r.Qual) == len(r.Seq) {
		for i, j := 0, len(r.Qual)-1; i <= j; i, j = i+1, j-1 {
			r.Qual[i], r.Qual[j] = r.Qual[j], r.Qual[i]
		}
	}
	r.RC = !r.RC
}

// Clone returns a deep copy of the read, used before an in-place
// reverse-complement so the original orientation can still be compared
// against by the caller (the aligner runs both orientations and keeps one).
func (r *Read) Clone() *Read {
	seqCopy := make([]byte, len(r.Seq))
	copy(seqCopy, r.Seq)
	qualCopy := make([]byte, len(r.Qual))
	copy(qualCopy, r.Qual)
	idCopy := make([]byte, len(r.ID))
	copy(idCopy, r.ID)
	return &Read{
		Sequence: Sequence{ID: idCopy, Seq: seqCopy},
		Qual:     qualCopy,
		RC:       r.RC,
	}
}
