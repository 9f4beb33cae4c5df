// Package kmerindex implements the k-mer index: an exact map from k-mer key
// to the graph locations it occurs at, plus a Hamming-distance-1 neighbor
// map used to tolerate one sequencing error per seed without falling back
// to a full alignment.
package kmerindex

import (
	"github.com/popgraph/vgtyper/pkg/gtconfig"
	"github.com/popgraph/vgtyper/pkg/gterrors"
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

// baseCode maps ACGT to its 2-bit code; any other byte (N, an SV escape
// byte, ...) makes a window unindexable.
var baseCode = [256]int8{}

func init() {
	for i := range baseCode {
		baseCode[i] = -1
	}
	baseCode['A'], baseCode['C'], baseCode['G'], baseCode['T'] = 0, 1, 2, 3
}

var baseLetter = [4]byte{'A', 'C', 'G', 'T'}

// Index is the in-memory k-mer index for one Graph. hamming0 is the exact
// key -> labels map; hamming1 maps a key one substitution away from some
// indexed key to that key, dropped whenever more than one hamming0 key maps
// to the same neighbor (mirrors MemIndex::generate_hamming1_hash_map).
type Index struct {
	K        int
	emptyKey uint64
	hamming0 map[uint64][]vgraph.KmerLabel
	hamming1 map[uint64]uint64
}

// New builds an empty index for the given k-mer size.
func New(k int) *Index {
	return &Index{
		K:        k,
		hamming0: make(map[uint64][]vgraph.KmerLabel),
	}
}

// encode 2-bit packs a k-mer into a uint64; ok is false if any base in the
// window is outside ACGT.
func encode(seq []byte, k int) (uint64, bool) {
	var key uint64
	for i := 0; i < k; i++ {
		c := baseCode[seq[i]]
		if c < 0 {
			return 0, false
		}
		key = key<<2 | uint64(c)
	}
	return key, true
}

// Build indexes every RefNode and VarNode in g, one entry per valid
// ungapped k-mer window of each node's own DNA (windows that would have to
// cross a node boundary are left to the graph walk in pkg/align instead).
func (idx *Index) Build(g *vgraph.Graph) error {
	for _, r := range g.RefNodes {
		idx.indexDNA(r.DNA, int64(r.Order)-1, 0, 0)
	}
	for _, v := range g.VarNodes {
		idx.indexDNA(v.DNA, int64(v.Order)-1, v.Order, v.VarNum)
	}
	idx.emptyKey = idx.findEmptyKey()
	idx.generateHamming1()
	return nil
}

// indexDNA slides a K-wide window one base at a time over dna, packing
// every window that is entirely ACGT into a key. Exact 2-bit packing, not a
// rolling hash, is what makes hammingDistance1 below a cheap bit operation
// on the key itself.
func (idx *Index) indexDNA(dna []byte, startAbs int64, varOrder uint32, varNum uint16) {
	if len(dna) < idx.K {
		return
	}
	for pos := 0; pos+idx.K <= len(dna); pos++ {
		key, ok := encode(dna[pos:pos+idx.K], idx.K)
		if !ok {
			continue
		}
		idx.hamming0[key] = append(idx.hamming0[key], vgraph.KmerLabel{
			Start:        uint32(startAbs + int64(pos)),
			End:          uint32(startAbs + int64(pos) + int64(idx.K)),
			VariantOrder: varOrder,
			VariantNum:   varNum,
		})
	}
}

// findEmptyKey returns the lowest uint64 not already used as a hamming0
// key, mirroring MemIndex::load's empty_key scan.
func (idx *Index) findEmptyKey() uint64 {
	for key := uint64(0); key < ^uint64(0); key++ {
		if _, used := idx.hamming0[key]; !used {
			return key
		}
	}
	return ^uint64(0)
}

// generateHamming1 builds the single-substitution neighbor map, evicting
// any neighbor key reachable from more than one hamming0 key: an ambiguous
// neighbor can't safely be resolved to either origin.
func (idx *Index) generateHamming1() {
	idx.hamming1 = make(map[uint64]uint64)
	duplicates := make(map[uint64]bool)
	for key := range idx.hamming0 {
		for _, nk := range hammingDistance1(key, idx.K) {
			if existing, ok := idx.hamming1[nk]; ok && existing != key {
				duplicates[nk] = true
				continue
			}
			idx.hamming1[nk] = key
		}
	}
	for nk := range duplicates {
		delete(idx.hamming1, nk)
	}
}

// hammingDistance1 returns every key one base substitution away from key,
// one array slot per (position, alternate base) pair, 3*k entries total.
func hammingDistance1(key uint64, k int) []uint64 {
	out := make([]uint64, 0, 3*k)
	for pos := 0; pos < k; pos++ {
		shift := uint(2 * (k - 1 - pos))
		mask := uint64(3) << shift
		original := (key & mask) >> shift
		for alt := uint64(0); alt < 4; alt++ {
			if alt == original {
				continue
			}
			out = append(out, (key&^mask)|(alt<<shift))
		}
	}
	return out
}

// Get returns the labels for every valid key in keys, giving up (returning
// a *gterrors.BudgetExceededError) as soon as the running total would
// exceed opts.MaxIndexLabels.
func (idx *Index) Get(keys []uint64, opts *gtconfig.Options) ([]vgraph.KmerLabel, error) {
	var labels []vgraph.KmerLabel
	total := 0
	for _, k := range keys {
		if k == idx.emptyKey {
			continue
		}
		hit, ok := idx.hamming0[k]
		if !ok {
			continue
		}
		total += len(hit)
		if total > opts.MaxIndexLabels {
			return nil, &gterrors.BudgetExceededError{Kind: gterrors.TooManyKmerLabels}
		}
		labels = append(labels, hit...)
	}
	return labels, nil
}

// MultiGet runs Get over each key set independently; a budget-exceeded key
// set contributes a nil slice rather than failing the whole batch.
func (idx *Index) MultiGet(keySets [][]uint64, opts *gtconfig.Options, stats *gterrors.RunStats) [][]vgraph.KmerLabel {
	out := make([][]vgraph.KmerLabel, len(keySets))
	for i, keys := range keySets {
		labels, err := idx.Get(keys, opts)
		if err != nil {
			if be, ok := err.(*gterrors.BudgetExceededError); ok && stats != nil {
				stats.Record(be)
			}
			continue
		}
		out[i] = labels
	}
	return out
}

// MultiGetHamming1 resolves each key set through the hamming1 neighbor map
// instead of looking keys up directly, used once an exact-match seed search
// comes up empty.
func (idx *Index) MultiGetHamming1(keySets [][]uint64) [][]vgraph.KmerLabel {
	out := make([][]vgraph.KmerLabel, len(keySets))
	for i, keys := range keySets {
		for _, k := range keys {
			origin, ok := idx.hamming1[k]
			if !ok {
				continue
			}
			out[i] = append(out[i], idx.hamming0[origin]...)
		}
	}
	return out
}

// EncodeKmer 2-bit packs a raw sequence window into the key space Get and
// MultiGet expect, for callers building seeds from a read.
func EncodeKmer(seq []byte) (uint64, bool) {
	return encode(seq, len(seq))
}

// DecodeKmer unpacks a key back to its base sequence, used by diagnostics.
func DecodeKmer(key uint64, k int) []byte {
	out := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		out[i] = baseLetter[key&3]
		key >>= 2
	}
	return out
}
