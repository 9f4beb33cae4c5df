// Package variant implements the output-facing variant emitter (spec
// component H): normalizing haplotype-level records, splitting them back
// into the simpler records a VCF line expects, and carrying the per-sample
// calls the genotyper produced.
package variant

import (
	"bytes"
	"sort"
	"strings"

	"github.com/popgraph/vgtyper/pkg/genotype"
)

// Variant is one output-facing record: an absolute position, its allele
// sequences (Seqs[0] is always the reference allele), one SampleCall per
// sample, free-form info fields, and a phase vector.
type Variant struct {
	AbsPos   uint32
	Seqs     [][]byte
	Calls    []genotype.SampleCall
	Infos    map[string]string
	Phase    []uint8
	SuffixID string
}

// NewVariant builds a single-bubble Variant directly from a Genotype's
// already reference-first allele sequences.
func NewVariant(gt genotype.Genotype) Variant {
	seqs := make([][]byte, len(gt.Alleles))
	for i, a := range gt.Alleles {
		seqs[i] = append([]byte(nil), a...)
	}
	return Variant{AbsPos: gt.VarOrder, Seqs: seqs, Infos: map[string]string{}}
}

// NewVariantFromHaplotype builds a Variant covering every bubble of a
// cluster at once: hapCalls names, for every candidate haplotype that
// survived genotyping, the combination index into gts' allele space. The
// resulting Seqs concatenate each bubble's allele in haplotype order,
// mirroring Variant(gts, hap_calls)'s multi-bubble constructor.
func NewVariantFromHaplotype(gts []genotype.Genotype, hapCalls []uint32) Variant {
	if len(gts) == 0 {
		return Variant{Infos: map[string]string{}}
	}
	bases := make([]int, len(gts))
	for i, gt := range gts {
		n := gt.NumAlleles()
		if n == 0 {
			n = 1
		}
		bases[i] = n
	}
	seqs := make([][]byte, 0, len(hapCalls))
	for _, combo := range hapCalls {
		var buf bytes.Buffer
		c := int(combo)
		alleles := make([]int, len(gts))
		for i := len(gts) - 1; i >= 0; i-- {
			alleles[i] = c % bases[i]
			c /= bases[i]
		}
		for i, gt := range gts {
			buf.Write(gt.Alleles[alleles[i]])
		}
		seqs = append(seqs, buf.Bytes())
	}
	return Variant{AbsPos: gts[0].VarOrder, Seqs: seqs, Infos: map[string]string{}}
}

// GenerateInfos populates Infos with the depth/allele-count summary fields
// a VCF INFO column carries, derived from Calls.
func (v *Variant) GenerateInfos() {
	if v.Infos == nil {
		v.Infos = map[string]string{}
	}
	depths := v.GetSeqDepthOfAllAlleles()
	parts := make([]string, len(depths))
	for i, d := range depths {
		parts[i] = itoa(d)
	}
	v.Infos["AD"] = strings.Join(parts, ",")
	v.Infos["DP"] = itoa(v.GetSeqDepth())
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// AddBaseInBack appends one base (N, or the byte following v.AbsPos+len in
// the reference — callers supply it via base) to every allele, used while
// normalizing a variant whose alleles would otherwise become empty.
func (v *Variant) AddBaseInBack(base byte) bool {
	if len(v.Seqs) == 0 {
		return false
	}
	for i := range v.Seqs {
		v.Seqs[i] = append(v.Seqs[i], base)
	}
	return true
}

// AddBaseInFront prepends one base to every allele and shifts AbsPos back
// by one, the counterpart to AddBaseInBack used when left-trimming would
// otherwise empty an allele.
func (v *Variant) AddBaseInFront(base byte) bool {
	if len(v.Seqs) == 0 {
		return false
	}
	for i, s := range v.Seqs {
		v.Seqs[i] = append([]byte{base}, s...)
	}
	v.AbsPos--
	return true
}

// RemoveCommonPrefix strips the longest common leading run shared by every
// allele, stopping one base short of emptying any allele unless
// keepOneMatch is false.
func (v *Variant) RemoveCommonPrefix(keepOneMatch bool) int {
	trimmed := 0
	for {
		minLen := v.shortestAllele()
		limit := minLen
		if keepOneMatch {
			limit--
		}
		if limit <= 0 {
			break
		}
		b := v.Seqs[0][0]
		same := true
		for _, s := range v.Seqs[1:] {
			if s[0] != b {
				same = false
				break
			}
		}
		if !same {
			break
		}
		for i := range v.Seqs {
			v.Seqs[i] = v.Seqs[i][1:]
		}
		v.AbsPos++
		trimmed++
	}
	return trimmed
}

// TrimSequences strips the longest common trailing run shared by every
// allele, the suffix half of normalize's left-align-then-trim pass.
func (v *Variant) TrimSequences(keepOneMatch bool) int {
	trimmed := 0
	for {
		minLen := v.shortestAllele()
		limit := minLen
		if keepOneMatch {
			limit--
		}
		if limit <= 0 {
			break
		}
		last := v.Seqs[0][len(v.Seqs[0])-1]
		same := true
		for _, s := range v.Seqs[1:] {
			if s[len(s)-1] != last {
				same = false
				break
			}
		}
		if !same {
			break
		}
		for i := range v.Seqs {
			v.Seqs[i] = v.Seqs[i][:len(v.Seqs[i])-1]
		}
		trimmed++
	}
	return trimmed
}

func (v *Variant) shortestAllele() int {
	min := len(v.Seqs[0])
	for _, s := range v.Seqs[1:] {
		if len(s) < min {
			min = len(s)
		}
	}
	return min
}

// Normalize applies Tan-Abecasis normalization: trim the common suffix,
// then the common prefix, keeping one matching base whenever trimming
// further would leave an allele empty, and repeat until no further trim is
// possible. The result is idempotent: normalizing an already-normalized
// Variant is a no-op.
func (v *Variant) Normalize() {
	if len(v.Seqs) < 2 || v.IsSV() {
		return
	}
	for {
		suffixTrimmed := v.TrimSequences(true)
		prefixTrimmed := v.RemoveCommonPrefix(true)
		if suffixTrimmed == 0 && prefixTrimmed == 0 {
			break
		}
	}
}

// IsNormalized reports whether Normalize would change nothing: either an
// allele has length 1, or the alleles disagree at both their first and
// last base.
func (v *Variant) IsNormalized() bool {
	if len(v.Seqs) < 2 {
		return true
	}
	for _, s := range v.Seqs {
		if len(s) == 1 {
			return true
		}
	}
	first := v.Seqs[0][0]
	last := v.Seqs[0][len(v.Seqs[0])-1]
	firstDiffers, lastDiffers := false, false
	for _, s := range v.Seqs[1:] {
		if s[0] != first {
			firstDiffers = true
		}
		if s[len(s)-1] != last {
			lastDiffers = true
		}
	}
	return firstDiffers && lastDiffers
}

// IsSNPOrSNPs reports whether every allele is exactly one base long.
func (v *Variant) IsSNPOrSNPs() bool {
	for _, s := range v.Seqs {
		if len(s) != 1 {
			return false
		}
	}
	return true
}

// IsWithMatchingFirstBases reports whether every allele shares the same
// first base, the condition break_down_variant and break_multi_snps rely
// on before they can split a record positionally.
func (v *Variant) IsWithMatchingFirstBases() bool {
	if len(v.Seqs) == 0 || len(v.Seqs[0]) == 0 {
		return false
	}
	first := v.Seqs[0][0]
	for _, s := range v.Seqs[1:] {
		if len(s) == 0 || s[0] != first {
			return false
		}
	}
	return true
}

// IsSV reports whether any allele is a special-position SV escape.
func (v *Variant) IsSV() bool {
	for _, s := range v.Seqs {
		if len(s) > 1 && s[0] == '<' && s[len(s)-1] == '>' {
			return true
		}
	}
	return false
}

// DetermineVariantType classifies the variant from its allele shapes.
func (v *Variant) DetermineVariantType() string {
	if v.IsSV() {
		return "SV"
	}
	if v.IsSNPOrSNPs() {
		if len(v.Seqs) == 2 {
			return "SNP"
		}
		return "SNPs"
	}
	refLen := len(v.Seqs[0])
	allShorter, allLonger := true, true
	for _, s := range v.Seqs[1:] {
		if len(s) >= refLen {
			allShorter = false
		}
		if len(s) <= refLen {
			allLonger = false
		}
	}
	switch {
	case allShorter:
		return "DEL"
	case allLonger:
		return "INS"
	default:
		return "COMPLEX"
	}
}

// GetSeqDepth sums read depth across every allele and sample.
func (v *Variant) GetSeqDepth() uint64 {
	var total uint64
	for _, c := range v.Calls {
		total += uint64(c.RefTotalDepth) + uint64(c.AltTotalDepth)
	}
	return total
}

// GetSeqDepthOfAllele sums, across samples, the coverage recorded for one
// allele index.
func (v *Variant) GetSeqDepthOfAllele(alleleID int) uint64 {
	var total uint64
	for _, c := range v.Calls {
		if alleleID < len(c.Coverage) {
			total += uint64(c.Coverage[alleleID])
		}
	}
	return total
}

// GetSeqDepthOfAllAlleles returns GetSeqDepthOfAllele for every allele in
// the record.
func (v *Variant) GetSeqDepthOfAllAlleles() []uint64 {
	depths := make([]uint64, len(v.Seqs))
	for i := range depths {
		depths[i] = v.GetSeqDepthOfAllele(i)
	}
	return depths
}

// GetQual returns a VCF-style QUAL: the largest PL across every sample and
// every allele pair other than the homozygous-reference one (index 0),
// capped at 255 like the phred scores it is drawn from.
func (v *Variant) GetQual() uint64 {
	var best uint64
	for _, c := range v.Calls {
		for i, p := range c.Phred {
			if i == 0 {
				continue
			}
			if uint64(p) > best {
				best = uint64(p)
			}
		}
	}
	return best
}

// Less orders variants by absolute position, then by the first allele's
// bytes, giving a total order usable by sort.Slice.
func (v Variant) Less(other Variant) bool {
	if v.AbsPos != other.AbsPos {
		return v.AbsPos < other.AbsPos
	}
	if len(v.Seqs) == 0 || len(other.Seqs) == 0 {
		return len(v.Seqs) < len(other.Seqs)
	}
	return bytes.Compare(v.Seqs[0], other.Seqs[0]) < 0
}

// Equal reports whether two variants carry the same position and allele
// set, ignoring sample calls.
func (v Variant) Equal(other Variant) bool {
	if v.AbsPos != other.AbsPos || len(v.Seqs) != len(other.Seqs) {
		return false
	}
	for i := range v.Seqs {
		if !bytes.Equal(v.Seqs[i], other.Seqs[i]) {
			return false
		}
	}
	return true
}

// SortVariants sorts a slice of Variants in place by position.
func SortVariants(vs []Variant) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].Less(vs[j]) })
}
