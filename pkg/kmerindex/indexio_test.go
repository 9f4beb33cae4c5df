package kmerindex

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDumpLoadRoundTrip(t *testing.T) {
	g := buildTestGraph(t)
	idx := New(16)
	if err := idx.Build(g); err != nil {
		t.Fatalf("Build: %v", err)
	}
	checksum := Checksum([]string{"chrT"}, []uint32{80})

	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")
	if err := idx.Dump(path, checksum); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	loaded, err := Load(path, checksum)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.K != idx.K {
		t.Fatalf("loaded.K = %d, want %d", loaded.K, idx.K)
	}
	key, _ := EncodeKmer(g.RefNodes[0].DNA[:16])
	if len(loaded.hamming0[key]) == 0 {
		t.Fatal("Load: expected the indexed k-mer to survive the round trip")
	}
}

func TestLoadRejectsChecksumMismatch(t *testing.T) {
	g := buildTestGraph(t)
	idx := New(16)
	if err := idx.Build(g); err != nil {
		t.Fatalf("Build: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")
	if err := idx.Dump(path, 1); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if _, err := Load(path, 2); err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}

func TestLoadRejectsGarbageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.bin")
	if err := os.WriteFile(path, []byte("not an index"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path, 0); err == nil {
		t.Fatal("expected an error loading a non-index file")
	}
}
