// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.
package main

/*
cdr-call detects centromere dip regions (CDRs) — localized depressions in a
binned methylation signal — from a headerless 4-column
(chrom, start, end, avg) bedGraph, and writes one 3-column BED row per call.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/methyl/cdr"
	"github.com/grailbio/methyl/encoding/bedgraph"
)

var (
	infile      = flag.String("i", "", "Input 4-column methylation bedGraph path; '-' or empty reads standard input. May also be given as the sole positional argument")
	outfile     = flag.String("o", "", "Output 3-column BED path; '-' or empty writes standard output")
	bpMerge     = flag.Int("bp-merge", cdr.DefaultOpts.BpMerge, "Pad both ends of each CDR by this many bases and merge overlapping/touching results; 0 disables")
	thrHeight   = flag.Float64("thr-height-perc-valley", cdr.DefaultOpts.ThrHeightPercValley, "Fraction of the chromosome median methylation required as the minimum effective height of a valley. Larger values filter for deeper valleys")
	thrProm     = flag.Float64("thr-prom-perc-valley", cdr.DefaultOpts.ThrPromPercValley, "Fraction of the chromosome median methylation required as the minimum prominence of a valley at detection time; 0 disables the prominence gate")
	bpEdge      = flag.Int("bp-edge", cdr.DefaultOpts.BpEdge, "Bases to look at on both edges of a candidate CDR to determine its effective height")
	parallelism = flag.Int("parallelism", cdr.DefaultOpts.Parallelism, "Maximum number of chromosomes processed simultaneously; 0 = runtime.NumCPU()")
)

func cdrCallUsage() {
	fmt.Printf("Usage: %s [OPTIONS] [inpath]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = cdrCallUsage
	shutdown := grail.Init()
	defer shutdown()

	inPath := *infile
	if flag.NArg() > 1 {
		log.Fatalf("Too many positional arguments (only inpath expected); please check flag syntax: '%s'", strings.Join(flag.Args(), " "))
	}
	if flag.NArg() == 1 {
		if inPath != "" {
			log.Fatalf("Input path given both with -i and positionally")
		}
		inPath = flag.Arg(0)
	}

	ctx := vcontext.Background()
	var (
		table *bedgraph.Table
		err   error
	)
	if inPath == "" || inPath == "-" {
		stat, serr := os.Stdin.Stat()
		if serr != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
			log.Fatalf("Missing input (no inpath and nothing piped to standard input)")
		}
		table, err = bedgraph.Read(os.Stdin)
	} else {
		table, err = bedgraph.ReadFromPath(ctx, inPath)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("cdr-call: loaded %d row(s) across %d chromosome(s)", table.NRecords(), len(table.Chroms()))

	opts := cdr.Opts{
		BpMerge:             *bpMerge,
		ThrHeightPercValley: *thrHeight,
		ThrPromPercValley:   *thrProm,
		BpEdge:              *bpEdge,
		Parallelism:         *parallelism,
	}
	calls, err := cdr.Call(ctx, table, opts)
	if err != nil {
		log.Panicf("%v", err)
	}

	if *outfile == "" || *outfile == "-" {
		err = cdr.WriteBED(os.Stdout, table.Chroms(), calls)
	} else {
		err = cdr.WriteBEDToPath(ctx, *outfile, table.Chroms(), calls)
	}
	if err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}
