package ingest

import (
	"testing"
	"time"

	"github.com/biogo/hts/sam"

	"github.com/popgraph/vgtyper/pkg/gterrors"
)

func TestSampleRosterDedupesReadGroups(t *testing.T) {
	r := NewSampleRoster()
	if err := r.AddReadGroup("rg1", "sampleA"); err != nil {
		t.Fatalf("AddReadGroup: %v", err)
	}
	if err := r.AddReadGroup("rg2", "sampleA"); err != nil {
		t.Fatalf("AddReadGroup: %v", err)
	}
	if err := r.AddReadGroup("rg3", "sampleB"); err != nil {
		t.Fatalf("AddReadGroup: %v", err)
	}
	if r.NumSamples() != 2 {
		t.Fatalf("NumSamples() = %d, want 2", r.NumSamples())
	}
	sample, ok := r.SampleFor("rg1")
	if !ok || sample != "sampleA" {
		t.Fatalf("SampleFor(rg1) = %q, %v, want sampleA, true", sample, ok)
	}
}

func TestSampleRosterConflictIsFatal(t *testing.T) {
	r := NewSampleRoster()
	if err := r.AddReadGroup("rg1", "sampleA"); err != nil {
		t.Fatalf("AddReadGroup: %v", err)
	}
	err := r.AddReadGroup("rg1", "sampleB")
	if err == nil {
		t.Fatal("expected a conflict error, got nil")
	}
	conflict, ok := err.(*gterrors.RosterConflictError)
	if !ok {
		t.Fatalf("error = %T, want *gterrors.RosterConflictError", err)
	}
	if conflict.Sample1 != "sampleA" || conflict.Sample2 != "sampleB" {
		t.Fatalf("conflict = %+v, want sampleA/sampleB", conflict)
	}
	if _, still := r.SampleFor("rg1"); !still {
		t.Fatal("a rejected AddReadGroup must not clear the existing mapping")
	}
}

func TestBuildSampleRosterFromHeader(t *testing.T) {
	header, err := sam.NewHeader(nil, nil)
	if err != nil {
		t.Fatalf("sam.NewHeader: %v", err)
	}
	rg1, err := sam.NewReadGroup("rg1", "", "", "", "", "", "", "sampleA", "", "", time.Time{}, 0)
	if err != nil {
		t.Fatalf("sam.NewReadGroup: %v", err)
	}
	rg2, err := sam.NewReadGroup("rg2", "", "", "", "", "", "", "sampleA", "", "", time.Time{}, 0)
	if err != nil {
		t.Fatalf("sam.NewReadGroup: %v", err)
	}
	if err := header.AddReadGroup(rg1); err != nil {
		t.Fatalf("AddReadGroup: %v", err)
	}
	if err := header.AddReadGroup(rg2); err != nil {
		t.Fatalf("AddReadGroup: %v", err)
	}

	roster, err := BuildSampleRoster(header)
	if err != nil {
		t.Fatalf("BuildSampleRoster: %v", err)
	}
	if roster.NumSamples() != 1 {
		t.Fatalf("NumSamples() = %d, want 1", roster.NumSamples())
	}
}
