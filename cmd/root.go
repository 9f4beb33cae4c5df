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
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// the command line arguments
var (
	proc      *int    // number of processors to use
	profiling *bool   // create profile for go pprof
	logFile   *string // file to write logs to, stdout if empty
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "vgtyper",
	Short: "genotype short reads against a population variation graph",
	Long: `
#####################################################################################
		VGTYPER: population-scale genotyping against a variation graph
#####################################################################################

 vgtyper builds a variation graph for a genomic region from a reference sequence
 and a set of known variants, indexes the graph by exact k-mer, then aligns short
 read pairs against the graph to call SNPs, indels, and structural variants with
 per-sample genotype likelihoods.

 vgtyper outputs per-region variant calls alongside per-sample depth and quality.`,
}

// Execute is called by main.main(). It only needs to happen once to RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// init sets up the persistent command line arguments
func init() {
	proc = RootCmd.PersistentFlags().IntP("processors", "p", 1, "number of processors to use")
	profiling = RootCmd.PersistentFlags().Bool("profiling", false, "create the files needed to profile vgtyper using the go tool pprof")
	logFile = RootCmd.PersistentFlags().StringP("logFile", "l", "", "file to write logs to (stdout if unset)")
}
