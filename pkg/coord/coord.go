// Package coord implements the coordinate service: translation between
// (contig, offset) pairs and the single absolute coordinate space formed by
// concatenating the contig table end to end.
package coord

import (
	"fmt"
	"sort"
)

// Contig is a named, fixed-length sequence contributing to the absolute
// coordinate space.
type Contig struct {
	Name   string
	Length uint32
}

// UnknownContigError is returned by Abs when the requested contig is not in
// the table.
type UnknownContigError struct {
	Name string
}

func (e *UnknownContigError) Error() string {
	return fmt.Sprintf("coord: unknown contig %q", e.Name)
}

// Service maps between per-contig positions and absolute positions over a
// fixed contig table. Offsets are computed once, lazily, on first use and
// then cached; the contig table itself is immutable for the lifetime of a
// Service.
type Service struct {
	contigs []Contig
	offsets []uint32
	byName  map[string]int
}

// NewService builds a coordinate service over the given contig table. The
// table order determines the absolute coordinate space:
// absolute(contigs[i], x) = offsets[i] + x, where
// offsets[i] = sum(contigs[j].Length for j < i).
func NewService(contigs []Contig) *Service {
	s := &Service{
		contigs: contigs,
		offsets: make([]uint32, len(contigs)),
		byName:  make(map[string]int, len(contigs)),
	}
	var running uint32
	for i, c := range contigs {
		s.offsets[i] = running
		s.byName[c.Name] = i
		running += c.Length
	}
	return s
}

// Contigs returns the contig table backing this service.
func (s *Service) Contigs() []Contig {
	return s.contigs
}

// Abs converts a (contig, pos) pair to an absolute position. pos is
// 0-based, relative to the start of the named contig.
func (s *Service) Abs(contigName string, pos uint32) (uint32, error) {
	i, ok := s.byName[contigName]
	if !ok {
		return 0, &UnknownContigError{Name: contigName}
	}
	return s.offsets[i] + pos, nil
}

// ToContig converts an absolute position back to a (contig name, pos) pair.
// It performs a binary search over offsets and returns the contig whose
// offset is the greatest one <= abs, mirroring
// AbsolutePosition::get_contig_position's use of std::lower_bound followed
// by stepping back one slot.
func (s *Service) ToContig(abs uint32) (string, uint32, error) {
	if len(s.offsets) == 0 {
		return "", 0, fmt.Errorf("coord: empty contig table")
	}
	// sort.Search finds the first index i such that offsets[i] > abs;
	// the contig we want is the one immediately before it.
	i := sort.Search(len(s.offsets), func(i int) bool {
		return s.offsets[i] > abs
	})
	if i == 0 {
		return "", 0, fmt.Errorf("coord: absolute position %d precedes all contigs", abs)
	}
	i--
	return s.contigs[i].Name, abs - s.offsets[i], nil
}
