// Package bamtags reads BAM records and surfaces the single-cell
// auxiliary tags (CB, UB, GN, GX) attached by upstream aligners.
package bamtags

import (
	"io"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

var (
	cbTag = sam.NewTag("CB")
	ubTag = sam.NewTag("UB")
	gnTag = sam.NewTag("GN")
	gxTag = sam.NewTag("GX")
)

// Record is a BAM alignment reduced to the fields the counting pipeline
// consumes. Tag fields are empty strings when the tag is absent.
type Record struct {
	Name  string
	Seq   []byte
	Qual  []byte
	MapQ  byte
	RefID int
	Pos   int
	Cigar string

	Mapped  bool
	Reverse bool

	CellBarcode string
	UMI         string
	GeneName    string
	GeneID      string
}

// FromSAM extracts a Record from a sam.Record. RefID is -1 for unmapped
// reads.
func FromSAM(r *sam.Record) Record {
	rec := Record{
		Name:    r.Name,
		Seq:     r.Seq.Expand(),
		Qual:    r.Qual,
		MapQ:    r.MapQ,
		RefID:   -1,
		Pos:     r.Pos,
		Cigar:   r.Cigar.String(),
		Mapped:  r.Flags&sam.Unmapped == 0,
		Reverse: r.Flags&sam.Reverse != 0,
	}
	if r.Ref != nil {
		rec.RefID = r.Ref.ID()
	}
	rec.CellBarcode = auxString(r, cbTag)
	rec.UMI = auxString(r, ubTag)
	rec.GeneName = auxString(r, gnTag)
	rec.GeneID = auxString(r, gxTag)
	return rec
}

func auxString(r *sam.Record, tag sam.Tag) string {
	aux := r.AuxFields.Get(tag)
	if aux == nil {
		return ""
	}
	if s, ok := aux.Value().(string); ok {
		return s
	}
	return ""
}

// HasCellTags reports whether both the cell barcode and UMI tags are
// present.
func (r *Record) HasCellTags() bool {
	return r.CellBarcode != "" && r.UMI != ""
}

// Assigned reports whether the read carries a gene annotation.
func (r *Record) Assigned() bool {
	return r.GeneName != "" || r.GeneID != ""
}

// Gene returns the gene label for counting: the gene name when present,
// otherwise the gene ID, otherwise the empty string.
func (r *Record) Gene() string {
	if r.GeneName != "" {
		return r.GeneName
	}
	return r.GeneID
}

// Reader streams Records from a BAM stream.
type Reader struct {
	b   *bam.Reader
	rec Record
	err error
}

// NewReader creates a Reader for the BAM data in r.
func NewReader(r io.Reader) (*Reader, error) {
	b, err := bam.NewReader(r, 1)
	if err != nil {
		return nil, errors.Wrap(err, "error reading BAM header")
	}
	return &Reader{b: b}, nil
}

// Header returns the BAM header.
func (r *Reader) Header() *sam.Header {
	return r.b.Header()
}

// Scan advances to the next record. It returns false at end of stream or
// on error; check Err afterwards.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	rec, err := r.b.Read()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}
	r.rec = FromSAM(rec)
	sam.PutInFreePool(rec)
	return true
}

// Record returns the record read by the last successful Scan. The record
// is valid until the next Scan call.
func (r *Reader) Record() Record {
	return r.rec
}

// Err returns the first error encountered while scanning.
func (r *Reader) Err() error {
	return r.err
}

// Close closes the underlying BAM reader.
func (r *Reader) Close() error {
	return r.b.Close()
}
