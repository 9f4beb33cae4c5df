package seqio

import (
	"bytes"
	"testing"
)

func TestBaseCheck(t *testing.T) {
	s := &Sequence{Seq: []byte("acgtnRYx")}
	s.BaseCheck()
	if got := string(s.Seq); got != "ACGTNNNN" {
		t.Fatalf("BaseCheck() = %q, want ACGTNNNN", got)
	}
}

func TestRevComplement(t *testing.T) {
	r := &Read{Sequence: Sequence{Seq: []byte("ACGTN")}, Qual: []byte("!!!!!")}
	r.RevComplement()
	if got := string(r.Seq); got != "NACGT" {
		t.Fatalf("RevComplement() = %q, want NACGT", got)
	}
	if !r.RC {
		t.Fatal("expected RC flag to be set")
	}
	r.RevComplement()
	if got := string(r.Seq); got != "ACGTN" {
		t.Fatalf("double RevComplement() = %q, want ACGTN", got)
	}
	if r.RC {
		t.Fatal("expected RC flag to be cleared after second call")
	}
}

func TestClone(t *testing.T) {
	r := &Read{Sequence: Sequence{ID: []byte("r1"), Seq: []byte("ACGT")}, Qual: []byte("!!!!")}
	clone := r.Clone()
	clone.Seq[0] = 'T'
	if bytes.Equal(r.Seq, clone.Seq) {
		t.Fatal("Clone() did not deep copy Seq")
	}
	if string(r.Seq) != "ACGT" {
		t.Fatal("mutating clone affected original")
	}
}
