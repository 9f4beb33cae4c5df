package vgraph

import (
	"encoding/gob"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/will-rowe/gfa"
)

// Store holds one Graph per region, keyed the way GraphStore keyed groot
// graphs by graph ID.
type Store map[int]*Graph

// Dump gob-encodes the store to path.
func (s Store) Dump(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewEncoder(file).Encode(s)
}

// Load replaces s's contents with the store gob-encoded at path.
func (s *Store) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewDecoder(file).Decode(s)
}

// refSegID and varSegID name the GFA segment a RefNode/VarNode maps onto;
// prefixed so the two index spaces never collide in the same GFA file.
func refSegID(i int) []byte { return []byte("r" + strconv.Itoa(i)) }
func varSegID(i int) []byte { return []byte("v" + strconv.Itoa(i)) }

// DumpGFA writes the graph's RefNodes and VarNodes as GFA segments, with a
// link for every bubble edge (RefNode -> each VarNode it opens, VarNode ->
// the RefNode it rejoins), the debug/alternate dump format alongside
// Store's gob encoding. Unlike the gob format this is lossy: only
// sequence and topology survive, not the special-position bookkeeping a
// reload needs, so DumpGFA is for inspection, not for Load's round trip.
func (g *Graph) DumpGFA(fileName string) error {
	newGFA := gfa.NewGFA()
	_ = newGFA.AddVersion(1)
	stamp := fmt.Sprintf("variation graph for %s:%d-%d, dumped at %v",
		g.Region.Chr, g.Region.Begin, g.Region.End, time.Now().Format("Mon Jan _2 15:04:05 2006"))
	newGFA.AddComment([]byte(stamp))

	for i, r := range g.RefNodes {
		seq := r.DNA
		if len(seq) == 0 {
			seq = []byte("*")
		}
		seg, err := gfa.NewSegment(refSegID(i), seq)
		if err != nil {
			return err
		}
		seg.Add(newGFA)
		for _, vi := range r.OutVars {
			link, err := gfa.NewLink(refSegID(i), []byte("+"), varSegID(vi), []byte("+"), []byte("0M"))
			if err != nil {
				return err
			}
			link.Add(newGFA)
		}
	}
	for i, v := range g.VarNodes {
		seq := v.DNA
		if len(seq) == 0 {
			seq = []byte("*")
		}
		seg, err := gfa.NewSegment(varSegID(i), seq)
		if err != nil {
			return err
		}
		seg.Add(newGFA)
		link, err := gfa.NewLink(varSegID(i), []byte("+"), refSegID(v.OutRef), []byte("+"), []byte("0M"))
		if err != nil {
			return err
		}
		link.Add(newGFA)
	}

	outfile, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer outfile.Close()
	writer, err := gfa.NewWriter(outfile, newGFA)
	if err != nil {
		return err
	}
	return newGFA.WriteGFAContent(writer)
}
