package count

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// mtxHeader is the only banner this package reads or writes: a general
// integer matrix in coordinate form.
const mtxHeader = "%%MatrixMarket matrix coordinate integer general"

// WriteMTX serializes the matrix in Matrix Market coordinate form. Indices
// are 1-based on disk. Entries are newline-separated with no trailing
// newline after the last triple; readers tolerant of either form accept
// this.
func (m *Matrix) WriteMTX(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%%\n%d %d %d\n", mtxHeader, m.NRows, m.NCols, m.NNZ()); err != nil {
		return err
	}
	for i := range m.Values {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%d %d %d", m.Rows[i]+1, m.Cols[i]+1, m.Values[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadMTX parses a Matrix Market coordinate file written by WriteMTX (with
// or without a trailing newline). The label vectors are not part of the
// format and come back empty; read them from the sidecar files.
func ReadMTX(r io.Reader) (*Matrix, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.E(err, "mtx: read header")
		}
		return nil, errors.E("mtx: empty input")
	}
	if got := strings.TrimSpace(scanner.Text()); got != mtxHeader {
		return nil, errors.E("mtx: unsupported header:", got)
	}

	m := &Matrix{}
	sawDims := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, errors.E("mtx: malformed coordinate line:", line)
		}
		a, err1 := strconv.Atoi(fields[0])
		b, err2 := strconv.Atoi(fields[1])
		v, err3 := strconv.ParseUint(fields[2], 10, 32)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, errors.E("mtx: malformed coordinate line:", line)
		}
		if !sawDims {
			m.NRows, m.NCols = a, b
			sawDims = true
			continue
		}
		if a < 1 || a > m.NRows || b < 1 || b > m.NCols {
			return nil, errors.E("mtx: coordinate out of range:", line)
		}
		m.Rows = append(m.Rows, a-1)
		m.Cols = append(m.Cols, b-1)
		m.Values = append(m.Values, uint32(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "mtx: read")
	}
	if !sawDims {
		return nil, errors.E("mtx: missing dimensions line")
	}
	return m, nil
}

// WriteBarcodes writes the column labels, one barcode per line in column
// index order.
func (m *Matrix) WriteBarcodes(w io.Writer) error {
	tsvw := tsv.NewWriter(w)
	for _, bc := range m.Barcodes {
		tsvw.WriteString(bc)
		if err := tsvw.EndLine(); err != nil {
			return err
		}
	}
	return tsvw.Flush()
}

// WriteGenes writes the row labels as two tab-separated columns, id and
// name, in row index order. Both columns carry the same label until gene
// annotations provide a separate display name.
func (m *Matrix) WriteGenes(w io.Writer) error {
	tsvw := tsv.NewWriter(w)
	for _, g := range m.Genes {
		tsvw.WriteString(g)
		tsvw.WriteString(g)
		if err := tsvw.EndLine(); err != nil {
			return err
		}
	}
	return tsvw.Flush()
}

// ReadBarcodes reads a barcodes.tsv sidecar: one barcode per line.
func ReadBarcodes(r io.Reader) ([]string, error) {
	var barcodes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		barcodes = append(barcodes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "barcodes: read")
	}
	return barcodes, nil
}

// ReadGenes reads a genes.tsv sidecar, returning the first (id) column.
func ReadGenes(r io.Reader) ([]string, error) {
	var genes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if i := strings.IndexByte(line, '\t'); i >= 0 {
			line = line[:i]
		}
		genes = append(genes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "genes: read")
	}
	return genes, nil
}
