package ingest

import (
	"github.com/biogo/hts/sam"

	"github.com/popgraph/vgtyper/pkg/gterrors"
)

// SampleRoster deduplicates a BAM header's read groups down to the sample
// names the genotyper actually cares about: many read groups (lanes,
// libraries) can belong to one sample, but a read group must never map to
// two different samples.
type SampleRoster struct {
	sampleOf map[string]string // read group ID -> sample name
	samples  []string          // samples, first-seen order
	seen     map[string]bool
}

// NewSampleRoster builds an empty roster.
func NewSampleRoster() *SampleRoster {
	return &SampleRoster{
		sampleOf: make(map[string]string),
		seen:     make(map[string]bool),
	}
}

// AddReadGroup records one read-group-to-sample mapping. It returns a
// *gterrors.RosterConflictError, and leaves the roster unchanged, if the
// read group was already mapped to a different sample.
func (r *SampleRoster) AddReadGroup(readGroup, sample string) error {
	if existing, ok := r.sampleOf[readGroup]; ok {
		if existing != sample {
			return &gterrors.RosterConflictError{
				ReadGroup: readGroup,
				Sample1:   existing,
				Sample2:   sample,
			}
		}
		return nil
	}
	r.sampleOf[readGroup] = sample
	if !r.seen[sample] {
		r.seen[sample] = true
		r.samples = append(r.samples, sample)
	}
	return nil
}

// BuildSampleRoster builds a roster from every read group declared in a
// BAM/SAM header, failing fatally on the first conflicting read group.
func BuildSampleRoster(header *sam.Header) (*SampleRoster, error) {
	r := NewSampleRoster()
	for _, rg := range header.RGs() {
		if err := r.AddReadGroup(rg.Name(), rg.Get(sam.Tag{'S', 'M'})); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// SampleFor returns the sample name a read group was registered under, and
// whether it was found.
func (r *SampleRoster) SampleFor(readGroup string) (string, bool) {
	s, ok := r.sampleOf[readGroup]
	return s, ok
}

// Samples returns the distinct sample names in the roster, in the order
// they were first added.
func (r *SampleRoster) Samples() []string {
	return r.samples
}

// NumSamples returns the number of distinct samples in the roster.
func (r *SampleRoster) NumSamples() int {
	return len(r.samples)
}
