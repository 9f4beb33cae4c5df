package align

import "github.com/will-rowe/ntHash"

// pickSeedOffsets divides seq into stride-wide blocks and, within each
// block, keeps only the offset whose canonical ntHash value is smallest
// (a minimizer), so AlignRead tries one exact k-mer lookup per block
// instead of one per base. Falls back to every offset when seq is too
// short to roll a hash over, or if ntHash can't hash the given sequence.
func pickSeedOffsets(seq []byte, k, stride int) []int {
	if stride < 1 {
		stride = 1
	}
	if len(seq) < k {
		return nil
	}
	hasher, err := ntHash.New(&seq, uint(k))
	if err != nil {
		return allOffsets(len(seq), k)
	}

	hashes := make([]uint64, 0, len(seq)-k+1)
	for hv := range hasher.Hash(true) {
		hashes = append(hashes, hv)
	}
	if len(hashes) != len(seq)-k+1 {
		return allOffsets(len(seq), k)
	}

	var offsets []int
	for blockStart := 0; blockStart < len(hashes); blockStart += stride {
		blockEnd := blockStart + stride
		if blockEnd > len(hashes) {
			blockEnd = len(hashes)
		}
		minOff := blockStart
		for off := blockStart + 1; off < blockEnd; off++ {
			if hashes[off] < hashes[minOff] {
				minOff = off
			}
		}
		offsets = append(offsets, minOff)
	}
	return offsets
}

func allOffsets(seqLen, k int) []int {
	n := seqLen - k + 1
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
