package main

// sc-extract reads a paired FASTQ library, pulls the cell barcode and UMI
// out of R1 according to the protocol's read structure, corrects barcodes
// against a whitelist, and writes the cDNA reads (R2) with the corrected
// barcode and UMI appended to the read name.
//
// Example:
//
//    sc-extract -r1 r1.fastq.gz -r2 r2.fastq.gz -whitelist 3M-february-2018.txt \
//        -protocol 10x-3prime-v3 -out extracted.fastq.gz

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/scbio/sc/barcode"
	"github.com/scbio/sc/encoding/fastq"
	"github.com/scbio/sc/protocol"
)

type extractFlags struct {
	r1, r2         string
	whitelistPath  string
	protocolName   string
	maxMismatch    int
	minBarcodeQual int
	outPath        string
	parallelism    int
}

// batchSize is the number of read pairs handed to the worker pool at a
// time.
const batchSize = 4096

type extractResult struct {
	match       barcode.Match
	umi         string
	qualOK      bool
	structureOK bool
}

type extractStats struct {
	totalReads uint64
	qualFailed uint64
	tooShort   uint64
	exact      uint64
	corrected  uint64
	unmatched  uint64
}

// fastqOutput is the annotated-read write path: the FASTQ writer plus its
// optional gzip layer. finish flushes the compressed stream so that a
// failure there surfaces instead of vanishing with a deferred close.
type fastqOutput struct {
	fqw *fastq.Writer
	gz  *gzip.Writer
}

func newFastqOutput(w io.Writer, compressed bool) *fastqOutput {
	o := &fastqOutput{}
	if compressed {
		o.gz = gzip.NewWriter(w)
		w = o.gz
	}
	o.fqw = fastq.NewWriter(w)
	return o
}

func (o *fastqOutput) finish() error {
	if o.gz != nil {
		return o.gz.Close()
	}
	return nil
}

func loadWhitelist(ctx context.Context, path string) (wl *barcode.Whitelist, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	wl, err = barcode.New(r)
	return wl, err
}

func extract(ctx context.Context, flags extractFlags) {
	wl, err := loadWhitelist(ctx, flags.whitelistPath)
	if err != nil {
		log.Fatalf("load whitelist %s: %v", flags.whitelistPath, err)
	}
	log.Printf("Loaded %d barcodes (length %d)", wl.Len(), wl.BarcodeLen())
	corrector := barcode.NewCorrector(wl, flags.maxMismatch)

	proto, err := protocol.Lookup(flags.protocolName)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("Using protocol: %s %s", proto.Name, proto.Version)

	in1, err := file.Open(ctx, flags.r1)
	if err != nil {
		log.Fatalf("open %s: %v", flags.r1, err)
	}
	defer file.CloseAndReport(ctx, in1, &err)
	in2, err := file.Open(ctx, flags.r2)
	if err != nil {
		log.Fatalf("open %s: %v", flags.r2, err)
	}
	defer file.CloseAndReport(ctx, in2, &err)
	var (
		inr1 io.Reader = in1.Reader(ctx)
		inr2 io.Reader = in2.Reader(ctx)
	)
	if u := compress.NewReaderPath(inr1, in1.Name()); u != nil {
		inr1 = u
	}
	if u := compress.NewReaderPath(inr2, in2.Name()); u != nil {
		inr2 = u
	}
	sc := fastq.NewPairScanner(inr1, inr2, fastq.ID|fastq.Seq|fastq.Qual)

	// An empty -out runs extraction for its statistics only.
	var (
		out file.File
		fo  *fastqOutput
	)
	if flags.outPath != "" {
		out, err = file.Create(ctx, flags.outPath)
		if err != nil {
			log.Fatalf("create %s: %v", flags.outPath, err)
		}
		fo = newFastqOutput(out.Writer(ctx), strings.HasSuffix(flags.outPath, ".gz"))
	}

	var (
		stats   extractStats
		r1Batch = make([]fastq.Read, batchSize)
		r2Batch = make([]fastq.Read, batchSize)
		results = make([]extractResult, batchSize)
	)
	for {
		n := 0
		for n < batchSize && sc.Scan(&r1Batch[n], &r2Batch[n]) {
			n++
		}
		if n == 0 {
			break
		}
		stats.totalReads += uint64(n)

		// Workers stride over the batch. They only read the corrector
		// and protocol, both immutable after construction.
		err := traverse.Each(flags.parallelism, func(jobIdx int) error {
			for i := jobIdx; i < n; i += flags.parallelism {
				res := &results[i]
				*res = extractResult{}
				c, err := proto.Extract([]byte(r1Batch[i].Seq), []byte(r1Batch[i].Qual))
				if err != nil {
					continue
				}
				res.structureOK = true
				res.qualOK = c.BarcodeQualOK(flags.minBarcodeQual)
				if !res.qualOK {
					continue
				}
				res.match = corrector.Match(c.Barcode)
				res.umi = c.UMI
			}
			return nil
		})
		if err != nil {
			log.Fatalf("extract: %v", err)
		}

		// Output order follows input order.
		for i := 0; i < n; i++ {
			res := &results[i]
			switch {
			case !res.structureOK:
				stats.tooShort++
				continue
			case !res.qualOK:
				stats.qualFailed++
				continue
			}
			switch res.match.Kind {
			case barcode.MatchExact:
				stats.exact++
			case barcode.MatchCorrected:
				stats.corrected++
			default:
				stats.unmatched++
				continue
			}
			if fo != nil {
				bc, _ := res.match.Barcode()
				name := fmt.Sprintf("%s:%s:%s", r2Batch[i].Name(), bc, res.umi)
				if err := fo.fqw.WriteWithName(name, &r2Batch[i]); err != nil {
					log.Fatalf("write %s: %v", flags.outPath, err)
				}
			}
		}
		if stats.totalReads%(batchSize*256) == 0 {
			log.Printf("Processed %d reads", stats.totalReads)
		}
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("read %s, %s: %v", flags.r1, flags.r2, err)
	}
	// Close the write path explicitly: a failed final flush must abort
	// the run rather than leave a silently truncated output behind.
	if fo != nil {
		if err := fo.finish(); err != nil {
			log.Fatalf("flush %s: %v", flags.outPath, err)
		}
		if err := out.Close(ctx); err != nil {
			log.Fatalf("close %s: %v", flags.outPath, err)
		}
	}

	valid := stats.exact + stats.corrected
	log.Printf("Total reads:        %d", stats.totalReads)
	log.Printf("Extracted:          %d (%.1f%%)", valid, pct(valid, stats.totalReads))
	log.Printf("  exact:            %d", stats.exact)
	log.Printf("  corrected:        %d", stats.corrected)
	log.Printf("Unmatched barcodes: %d", stats.unmatched)
	log.Printf("Quality failed:     %d", stats.qualFailed)
	log.Printf("Too short:          %d", stats.tooShort)
}

func pct(num, denom uint64) float64 {
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom) * 100
}

func main() {
	var flags extractFlags
	flag.StringVar(&flags.r1, "r1", "", "FASTQ file containing R1 (barcode+UMI) reads.")
	flag.StringVar(&flags.r2, "r2", "", "FASTQ file containing R2 (cDNA) reads.")
	flag.StringVar(&flags.whitelistPath, "whitelist", "", "Barcode whitelist file, one barcode per line.")
	flag.StringVar(&flags.protocolName, "protocol", "10x-3prime-v3", "Library protocol (10x-3prime-v3, 10x-3prime-v2, 10x-5prime-v2).")
	flag.IntVar(&flags.maxMismatch, "max-mismatch", 1, "Maximum Hamming distance for barcode correction.")
	flag.IntVar(&flags.minBarcodeQual, "min-barcode-qual", 10, "Minimum mean barcode base quality.")
	flag.StringVar(&flags.outPath, "out", "extracted.fastq.gz", "Output FASTQ file for annotated cDNA reads. Empty reports statistics only.")
	flag.IntVar(&flags.parallelism, "parallelism", runtime.NumCPU(), "Number of worker goroutines.")
	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if flags.r1 == "" || flags.r2 == "" || flags.whitelistPath == "" {
		log.Fatal("-r1, -r2 and -whitelist are required")
	}
	if flags.parallelism < 1 {
		flags.parallelism = 1
	}
	extract(ctx, flags)
	log.Printf("All done")
}
