package variant

// BreakMultiSnps splits a variant whose alleles are all single bases into
// R-1 biallelic SNPs, one per alternate allele, each keeping the original
// Calls (SampleCall.Coverage is not re-sliced: callers that need a
// genuinely biallelic SampleCall should route each alt through
// genotype.Haplotype.MakeBiAllelicCall first). Mirrors break_multi_snps.
func BreakMultiSnps(v Variant) []Variant {
	if !v.IsSNPOrSNPs() || len(v.Seqs) < 3 {
		return []Variant{v}
	}
	out := make([]Variant, 0, len(v.Seqs)-1)
	for _, alt := range v.Seqs[1:] {
		nv := Variant{
			AbsPos: v.AbsPos,
			Seqs:   [][]byte{v.Seqs[0], alt},
			Calls:  v.Calls,
			Infos:  copyInfos(v.Infos),
			Phase:  v.Phase,
		}
		out = append(out, nv)
	}
	return out
}

func copyInfos(infos map[string]string) map[string]string {
	out := make(map[string]string, len(infos))
	for k, v := range infos {
		out[k] = v
	}
	return out
}

// alleleDivergence is the number of alleles whose length differs from the
// reference allele's length by at least one base, the rough proxy
// break_down_variant uses for "how complex is this haplotype record".
func alleleDivergence(v Variant) int {
	if len(v.Seqs) == 0 {
		return 0
	}
	refLen := len(v.Seqs[0])
	n := 0
	for _, s := range v.Seqs[1:] {
		if len(s) != refLen {
			n++
		}
	}
	return n
}

// BreakDownVariant returns v unsplit when it is an SV or its allele
// divergence is below threshold. Otherwise a record whose alleles are all
// single bases is split one-per-alternate via BreakMultiSnps, and any other
// record is returned unsplit: alleles longer than one base are never
// decomposed. Single-base alleles have a divergence of 0, so a split
// happens only when threshold is 0 or less.
func BreakDownVariant(v Variant, threshold int) []Variant {
	if v.IsSV() || alleleDivergence(v) < threshold {
		return []Variant{v}
	}
	if v.IsSNPOrSNPs() {
		return BreakMultiSnps(v)
	}
	return []Variant{v}
}
