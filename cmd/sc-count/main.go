package main

// sc-count builds a gene by cell count matrix from a tagged BAM file.
// Records must carry the CB (cell barcode) tag and a GN or GX gene tag;
// UMI deduplication additionally needs the UB tag. The matrix is written
// in Matrix Market form alongside barcodes.tsv and genes.tsv.
//
// Example:
//
//    sc-count -input tagged.bam -out matrix/ -umi-dedup

import (
	"context"
	"flag"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/scbio/sc/count"
	"github.com/scbio/sc/encoding/bamtags"
	"github.com/scbio/sc/umi"
)

type countFlags struct {
	inputPath   string
	outDir      string
	minMapQ     int
	format      string
	umiDedup    bool
	umiMismatch int
}

type countStats struct {
	totalReads    uint64
	lowQuality    uint64
	noCellTags    uint64
	assignedReads uint64
}

// cellGene identifies one matrix entry during UMI collection.
type cellGene struct {
	barcode, gene string
}

func countMain(ctx context.Context, flags countFlags) {
	if flags.format != "mtx" {
		log.Fatalf("unknown output format: %s", flags.format)
	}

	in, err := file.Open(ctx, flags.inputPath)
	if err != nil {
		log.Fatalf("open %s: %v", flags.inputPath, err)
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader, err := bamtags.NewReader(in.Reader(ctx))
	if err != nil {
		log.Fatalf("read %s: %v", flags.inputPath, err)
	}

	var (
		stats   countStats
		counter = count.NewCounter()
		// UMI tallies per matrix entry, with entry order preserved so
		// the label vectors come out in first-seen order.
		umiCounts map[cellGene]*umi.Graph
		umiOrder  []cellGene
	)
	if flags.umiDedup {
		umiCounts = make(map[cellGene]*umi.Graph)
	}
	for reader.Scan() {
		rec := reader.Record()
		stats.totalReads++
		if stats.totalReads%1000000 == 0 {
			log.Printf("Processed %d reads, %d assigned", stats.totalReads, stats.assignedReads)
		}
		if !rec.Mapped || int(rec.MapQ) < flags.minMapQ {
			stats.lowQuality++
			continue
		}
		gene := rec.Gene()
		if rec.CellBarcode == "" || gene == "" {
			stats.noCellTags++
			continue
		}
		if flags.umiDedup {
			if rec.UMI == "" {
				stats.noCellTags++
				continue
			}
			key := cellGene{rec.CellBarcode, gene}
			g, ok := umiCounts[key]
			if !ok {
				g = umi.NewGraph()
				umiCounts[key] = g
				umiOrder = append(umiOrder, key)
			}
			g.Add(rec.UMI, 1)
		} else {
			counter.Increment(rec.CellBarcode, gene)
		}
		stats.assignedReads++
	}
	if err := reader.Err(); err != nil {
		log.Fatalf("read %s: %v", flags.inputPath, err)
	}
	if err := reader.Close(); err != nil {
		log.Fatalf("close %s: %v", flags.inputPath, err)
	}

	if flags.umiDedup {
		var uniqueUMIs uint64
		for _, key := range umiOrder {
			groups := umiCounts[key].Dedup(flags.umiMismatch)
			counter.Add(key.barcode, key.gene, uint32(len(groups)))
			uniqueUMIs += uint64(len(groups))
		}
		saturation := 0.0
		if stats.assignedReads > 0 {
			saturation = 1 - float64(uniqueUMIs)/float64(stats.assignedReads)
		}
		log.Printf("UMI dedup: %d unique molecules from %d reads (saturation %.3f)",
			uniqueUMIs, stats.assignedReads, saturation)
	}

	log.Printf("Building count matrix")
	matrix := counter.Build()
	log.Printf("Matrix: %d genes x %d cells, %d entries", matrix.NRows, matrix.NCols, matrix.NNZ())

	writeOutput(ctx, flags.outDir, matrix)

	log.Printf("Total reads:    %d", stats.totalReads)
	log.Printf("Assigned reads: %d", stats.assignedReads)
	log.Printf("Low quality:    %d", stats.lowQuality)
	log.Printf("Missing tags:   %d", stats.noCellTags)
}

func writeOutput(ctx context.Context, dir string, m *count.Matrix) {
	write := func(name string, fn func(io.Writer) error) {
		path := file.Join(dir, name)
		out, err := file.Create(ctx, path)
		if err != nil {
			log.Fatalf("create %s: %v", path, err)
		}
		if err := fn(out.Writer(ctx)); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		if err := out.Close(ctx); err != nil {
			log.Fatalf("close %s: %v", path, err)
		}
		log.Printf("Wrote %s", path)
	}
	write("matrix.mtx", m.WriteMTX)
	write("barcodes.tsv", m.WriteBarcodes)
	write("genes.tsv", m.WriteGenes)
}

func main() {
	var flags countFlags
	flag.StringVar(&flags.inputPath, "input", "", "BAM file with CB, UB and GN/GX tags.")
	flag.StringVar(&flags.outDir, "out", ".", "Output directory for matrix files.")
	flag.IntVar(&flags.minMapQ, "min-mapq", 30, "Minimum mapping quality.")
	flag.StringVar(&flags.format, "format", "mtx", "Output format (mtx).")
	flag.BoolVar(&flags.umiDedup, "umi-dedup", false, "Collapse reads to unique molecules per cell and gene.")
	flag.IntVar(&flags.umiMismatch, "umi-mismatch", 1, "Maximum Hamming distance when collapsing UMIs.")
	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if flags.inputPath == "" {
		log.Fatal("-input is required")
	}
	countMain(ctx, flags)
	log.Printf("All done")
}
