package ingest

import "testing"

func TestToGraphRecordAddsContigOffset(t *testing.T) {
	v := VariantRecord{Chr: "chr2", Pos: 50, Ref: []byte("A"), Alts: [][]byte{[]byte("T")}}
	gr := v.ToGraphRecord(1000)
	if gr.Pos != 1050 {
		t.Fatalf("Pos = %d, want 1050", gr.Pos)
	}
	if string(gr.Ref) != "A" || string(gr.Alts[0]) != "T" {
		t.Fatalf("Ref/Alts = %q/%q, want A/T", gr.Ref, gr.Alts[0])
	}
}
