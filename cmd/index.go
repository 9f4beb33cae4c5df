// Copyright © 2017 Will Rowe <will.rowe@stfc.ac.uk>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/popgraph/vgtyper/internal/climisc"
	"github.com/popgraph/vgtyper/internal/version"
	"github.com/popgraph/vgtyper/pkg/coord"
	"github.com/popgraph/vgtyper/pkg/ingest"
	"github.com/popgraph/vgtyper/pkg/kmerindex"
	"github.com/popgraph/vgtyper/pkg/vgraph"
)

// the command line arguments
var (
	refFasta      *string // plain single-sequence reference slice for the region
	variantsFile  *string // tab-separated known-variant records for the region
	genomeFile    *string // tab-separated contig name/length table
	regionChr     *string // contig name
	regionBegin   *uint   // 0-based region start, relative to regionChr
	kmerSize      *uint   // k-mer size used by the index
	indexOutDir   *string
	dumpGFA       *bool // also write the graph as a GFA file, for inspection
	defaultIdxDir = "./vgtyper-index-" + time.Now().Format("20060102150405")
)

// indexCmd is used by cobra
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build a variation graph for a region and index it by k-mer",
	Long:  `Build a variation graph for a region and index it by k-mer`,
	Run: func(cmd *cobra.Command, args []string) {
		runIndex()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return climisc.CheckRequiredFlags(cmd.Flags())
	},
}

func init() {
	refFasta = indexCmd.Flags().StringP("ref", "r", "", "path to the region's reference bases (one sequence, no header) - required")
	variantsFile = indexCmd.Flags().StringP("variants", "V", "", "path to the region's known variants (tab-separated: pos, ref, comma-separated alts) - required")
	genomeFile = indexCmd.Flags().StringP("genome", "g", "", "path to the genome's contig table (tab-separated: name, length) - required")
	regionChr = indexCmd.Flags().StringP("chr", "c", "", "contig name for the region - required")
	regionBegin = indexCmd.Flags().UintP("begin", "b", 0, "0-based region start, relative to --chr")
	kmerSize = indexCmd.Flags().UintP("kmerSize", "k", 32, "k-mer size used by the index (<= 32)")
	indexOutDir = indexCmd.PersistentFlags().StringP("outDir", "o", defaultIdxDir, "directory to save the graph and index to")
	dumpGFA = indexCmd.Flags().Bool("gfa", false, "also write the graph as outDir/index.gfa, for inspection")
	indexCmd.MarkFlagRequired("ref")
	indexCmd.MarkFlagRequired("variants")
	indexCmd.MarkFlagRequired("genome")
	indexCmd.MarkFlagRequired("chr")
	RootCmd.AddCommand(indexCmd)
}

// readRegionFasta reads a plain reference slice: whitespace and any FASTA
// header line (starting with '>') are stripped, but no multi-record FASTA
// parsing is attempted - a region index is always built from one sequence.
func readRegionFasta(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var seq []byte
	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || line[0] == '>' {
			continue
		}
		seq = append(seq, []byte(strings.ToUpper(strings.TrimSpace(line)))...)
	}
	return seq, scanner.Err()
}

// readRegionVariants reads tab-separated known-variant records, one per
// line: contig-relative 0-based pos, ref allele, comma-separated alts.
func readRegionVariants(path, chr string) ([]ingest.VariantRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var records []ingest.VariantRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("index: malformed variant record %q (want pos<TAB>ref<TAB>alts)", line)
		}
		pos, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("index: bad position %q: %v", fields[0], err)
		}
		alts := make([][]byte, 0)
		for _, alt := range strings.Split(fields[2], ",") {
			alts = append(alts, []byte(strings.ToUpper(alt)))
		}
		records = append(records, ingest.VariantRecord{
			Chr:  chr,
			Pos:  uint32(pos),
			Ref:  []byte(strings.ToUpper(fields[1])),
			Alts: alts,
		})
	}
	return records, scanner.Err()
}

// readGenomeTable reads a tab-separated contig name/length table, the
// table coord.Service uses to place a region in the genome's absolute
// coordinate space.
func readGenomeTable(path string) ([]coord.Contig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var contigs []coord.Contig
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("index: malformed genome table entry %q (want name<TAB>length)", line)
		}
		length, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("index: bad contig length %q: %v", fields[1], err)
		}
		contigs = append(contigs, coord.Contig{Name: fields[0], Length: uint32(length)})
	}
	return contigs, scanner.Err()
}

// indexParamCheck checks the supplied CLI parameters.
func indexParamCheck() error {
	climisc.ErrorCheck(climisc.CheckFile(*refFasta))
	climisc.ErrorCheck(climisc.CheckFile(*variantsFile))
	climisc.ErrorCheck(climisc.CheckFile(*genomeFile))
	if *kmerSize == 0 || *kmerSize > 32 {
		return fmt.Errorf("k-mer size must be in (0, 32], got %d", *kmerSize)
	}
	if _, err := os.Stat(*indexOutDir); os.IsNotExist(err) {
		if err := os.MkdirAll(*indexOutDir, 0700); err != nil {
			return fmt.Errorf("can't create specified output directory")
		}
	}
	*proc = climisc.SetProcessors(*proc)
	return nil
}

// runIndex is the main function for the index subcommand: build the
// region's variation graph, index it by exact k-mer, and dump both to
// outDir, with staged log.Printf progress reporting throughout.
func runIndex() {
	if *profiling {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}
	if *logFile != "" {
		logFH := climisc.StartLogging(*logFile)
		defer logFH.Close()
		log.SetOutput(logFH)
	}
	log.Printf("vgtyper (version %s)", version.GetVersion())
	log.Printf("starting the index subcommand")
	log.Printf("checking parameters...")
	climisc.ErrorCheck(indexParamCheck())
	log.Printf("\tprocessors: %d", *proc)
	log.Printf("\tk-mer size: %d", *kmerSize)
	log.Printf("\tregion: %s:%d+", *regionChr, *regionBegin)

	log.Printf("reading genome contig table from %q...", *genomeFile)
	contigs, err := readGenomeTable(*genomeFile)
	climisc.ErrorCheck(err)
	coordSvc := coord.NewService(contigs)
	absBegin, err := coordSvc.Abs(*regionChr, uint32(*regionBegin))
	climisc.ErrorCheck(err)
	log.Printf("\t%d contigs, region starts at absolute position %d", len(contigs), absBegin)

	log.Printf("reading reference slice from %q...", *refFasta)
	ref, err := readRegionFasta(*refFasta)
	climisc.ErrorCheck(err)
	log.Printf("\t%d bases", len(ref))

	log.Printf("reading known variants from %q...", *variantsFile)
	records, err := readRegionVariants(*variantsFile, *regionChr)
	climisc.ErrorCheck(err)
	log.Printf("\t%d variant records", len(records))

	log.Printf("building the variation graph...")
	region := vgraph.GenomicRegion{Chr: *regionChr, Begin: absBegin, End: absBegin + uint32(len(ref))}
	graphRecords := make([]vgraph.VariantRecord, len(records))
	for i, r := range records {
		graphRecords[i] = r.ToGraphRecord(absBegin)
	}
	g, err := vgraph.BuildGraph(region, absBegin, ref, graphRecords)
	climisc.ErrorCheck(err)
	climisc.ErrorCheck(g.Check())
	log.Printf("\t%d reference nodes, %d variant nodes", len(g.RefNodes), len(g.VarNodes))

	log.Printf("indexing the graph by k-mer...")
	idx := kmerindex.New(int(*kmerSize))
	climisc.ErrorCheck(idx.Build(g))

	log.Printf("saving graph and index to %q...", *indexOutDir)
	store := vgraph.Store{0: g}
	climisc.ErrorCheck(store.Dump(*indexOutDir + "/index.graph"))
	log.Printf("\tsaved variation graph")
	checksum := kmerindex.Checksum([]string{*regionChr}, []uint32{uint32(len(ref))})
	climisc.ErrorCheck(idx.Dump(*indexOutDir+"/index.kmer", checksum))
	log.Printf("\tsaved k-mer index")
	if *dumpGFA {
		climisc.ErrorCheck(g.DumpGFA(*indexOutDir + "/index.gfa"))
		log.Printf("\tsaved GFA dump")
	}
	log.Println("finished")
}
