package main

// sc-qc reads a count matrix directory produced by sc-count and writes a
// JSON quality report: run-level metrics, per-cell metrics, and warnings
// for runs that fall below standard thresholds.
//
// Example:
//
//    sc-qc -input matrix/ -output qc_report.json -sample pbmc1k

import (
	"context"
	"flag"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/scbio/sc/count"
	"github.com/scbio/sc/qc"
)

type qcFlags struct {
	inputDir   string
	outputPath string
	sample     string
	minGenes   uint64
	maxGenes   uint64
	maxMito    float64
}

// passingCells counts cells within the gene-count bounds and under the
// mitochondrial fraction cap.
func passingCells(cells []qc.CellMetrics, minGenes, maxGenes uint64, maxMito float64) int {
	n := 0
	for _, c := range cells {
		if c.Genes >= minGenes && c.Genes <= maxGenes && c.MitoPercent <= maxMito {
			n++
		}
	}
	return n
}

func open(ctx context.Context, dir, name string, fn func(io.Reader) error) {
	path := file.Join(dir, name)
	in, err := file.Open(ctx, path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	if err := fn(in.Reader(ctx)); err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	if err := in.Close(ctx); err != nil {
		log.Fatalf("close %s: %v", path, err)
	}
}

func qcMain(ctx context.Context, flags qcFlags) {
	var (
		matrix   *count.Matrix
		barcodes []string
		genes    []string
	)
	open(ctx, flags.inputDir, "matrix.mtx", func(r io.Reader) (err error) {
		matrix, err = count.ReadMTX(r)
		return err
	})
	open(ctx, flags.inputDir, "barcodes.tsv", func(r io.Reader) (err error) {
		barcodes, err = count.ReadBarcodes(r)
		return err
	})
	open(ctx, flags.inputDir, "genes.tsv", func(r io.Reader) (err error) {
		genes, err = count.ReadGenes(r)
		return err
	})
	matrix.Barcodes = barcodes
	matrix.Genes = genes
	log.Printf("Matrix: %d genes x %d cells, %d entries", matrix.NRows, matrix.NCols, matrix.NNZ())

	countsPerCell := matrix.CountsPerCell()
	genesPerCell := matrix.GenesPerCell()

	report := qc.NewReport(flags.sample)
	report.Metrics.NumCells = uint64(matrix.NCols)
	report.Metrics.TotalGenes = uint64(matrix.NRows)
	// Without per-read provenance the matrix values stand in for both
	// reads and UMIs per cell.
	report.Metrics.UpdateFromCells(countsPerCell, genesPerCell, countsPerCell)

	for i, bc := range barcodes {
		cell := qc.CellMetrics{Barcode: bc}
		if i < len(countsPerCell) {
			cell.Reads = countsPerCell[i]
			cell.UMIs = countsPerCell[i]
		}
		if i < len(genesPerCell) {
			cell.Genes = genesPerCell[i]
		}
		report.PerCell = append(report.PerCell, cell)
	}
	report.GenerateWarnings()

	out, err := file.Create(ctx, flags.outputPath)
	if err != nil {
		log.Fatalf("create %s: %v", flags.outputPath, err)
	}
	if err := report.WriteJSON(out.Writer(ctx)); err != nil {
		log.Fatalf("write %s: %v", flags.outputPath, err)
	}
	if err := out.Close(ctx); err != nil {
		log.Fatalf("close %s: %v", flags.outputPath, err)
	}

	passing := passingCells(report.PerCell, flags.minGenes, flags.maxGenes, flags.maxMito)
	passingPct := 0.0
	if matrix.NCols > 0 {
		passingPct = float64(passing) / float64(matrix.NCols) * 100
	}
	log.Printf("Sample:            %s", flags.sample)
	log.Printf("Cells:             %d", matrix.NCols)
	log.Printf("Genes:             %d", matrix.NRows)
	log.Printf("Median genes/cell: %.0f", report.Metrics.MedianGenesPerCell)
	log.Printf("Median UMIs/cell:  %.0f", report.Metrics.MedianUMIPerCell)
	log.Printf("Cells passing QC:  %d (%.1f%%)", passing, passingPct)
	for _, w := range report.Warnings {
		log.Printf("Warning: %s", w)
	}
	log.Printf("QC report written to %s", flags.outputPath)
}

func main() {
	var flags qcFlags
	flag.StringVar(&flags.inputDir, "input", "", "Matrix directory with matrix.mtx, barcodes.tsv and genes.tsv.")
	flag.StringVar(&flags.outputPath, "output", "qc_report.json", "Output QC report file.")
	flag.StringVar(&flags.sample, "sample", "sample", "Sample name recorded in the report.")
	flag.Uint64Var(&flags.minGenes, "min-genes", 200, "Minimum genes per cell to pass QC.")
	flag.Uint64Var(&flags.maxGenes, "max-genes", 10000, "Maximum genes per cell to pass QC.")
	flag.Float64Var(&flags.maxMito, "max-mito", 20.0, "Maximum mitochondrial percentage to pass QC.")
	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if flags.inputDir == "" {
		log.Fatal("-input is required")
	}
	qcMain(ctx, flags)
	log.Printf("All done")
}
