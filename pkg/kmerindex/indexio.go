package kmerindex

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"hash/crc32"
	"io/ioutil"
	"os"

	"github.com/popgraph/vgtyper/pkg/gterrors"
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

// magic identifies an index file so Load fails fast on anything else.
const magic uint32 = 0x6b746970 // "ktip"

// Checksum computes the contig-table checksum an index file's header
// carries, so Load can refuse to pair an index with the wrong graph.
func Checksum(contigNames []string, contigLengths []uint32) uint32 {
	h := crc32.NewIEEE()
	for i, name := range contigNames {
		h.Write([]byte(name))
		binary.Write(h, binary.LittleEndian, contigLengths[i])
	}
	return h.Sum32()
}

// indexBody is the gob-encoded payload following the binary header.
type indexBody struct {
	K        int
	EmptyKey uint64
	Hamming0 map[uint64][]byte // marshalled labels, see labelBytes
	Hamming1 map[uint64]uint64
}

// Dump writes the index to path as a fixed binary header (magic, K,
// contig checksum) followed by a gob-encoded body. The header lets Load
// reject a stale index before paying for a full gob decode, which a bare
// gob.Encode of the whole Index cannot offer on its own.
func (idx *Index) Dump(path string, checksum uint32) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(idx.K))
	binary.LittleEndian.PutUint32(header[8:12], checksum)
	if _, err := file.Write(header); err != nil {
		return err
	}

	body := indexBody{K: idx.K, EmptyKey: idx.emptyKey, Hamming1: idx.hamming1}
	body.Hamming0 = make(map[uint64][]byte, len(idx.hamming0))
	for k, labels := range idx.hamming0 {
		buf := &bytes.Buffer{}
		if err := gob.NewEncoder(buf).Encode(labels); err != nil {
			return err
		}
		body.Hamming0[k] = buf.Bytes()
	}
	return gob.NewEncoder(file).Encode(&body)
}

// Load reads an index previously written by Dump, checking that its header
// matches expectedChecksum.
func Load(path string, expectedChecksum uint32) (*Index, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 12 {
		return nil, fmt.Errorf("kmerindex: %s is too short to be an index file", path)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != magic {
		return nil, fmt.Errorf("kmerindex: %s is not an index file", path)
	}
	k := int(binary.LittleEndian.Uint32(data[4:8]))
	checksum := binary.LittleEndian.Uint32(data[8:12])
	if checksum != expectedChecksum {
		return nil, &gterrors.IndexMismatchError{Reason: fmt.Sprintf("%s was built against a different graph (checksum mismatch)", path)}
	}

	var body indexBody
	if err := gob.NewDecoder(bytes.NewReader(data[12:])).Decode(&body); err != nil {
		return nil, err
	}

	idx := &Index{K: k, emptyKey: body.EmptyKey, hamming1: body.Hamming1}
	idx.hamming0 = make(map[uint64][]vgraph.KmerLabel, len(body.Hamming0))
	for key, raw := range body.Hamming0 {
		var labels []vgraph.KmerLabel
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&labels); err != nil {
			return nil, err
		}
		idx.hamming0[key] = labels
	}
	return idx, nil
}
