package main

import (
	"bytes"
	"errors"
	"io/ioutil"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/scbio/sc/encoding/fastq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct {
	err error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	return 0, w.err
}

// A write error held back by the gzip buffer must come out of finish, not
// disappear.
func TestFastqOutputFinishReportsFlushError(t *testing.T) {
	wantErr := errors.New("no space left on device")
	fo := newFastqOutput(&failingWriter{err: wantErr}, true)

	r := fastq.Read{ID: "@read1", Seq: "ACGT", Plus: "+", Qual: "AAAA"}
	// The record fits in the gzip buffer, so the write itself succeeds.
	require.NoError(t, fo.fqw.WriteWithName("read1:AAAA:CCCC", &r))

	err := fo.finish()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no space left on device")
}

func TestFastqOutputPlain(t *testing.T) {
	var buf bytes.Buffer
	fo := newFastqOutput(&buf, false)

	r := fastq.Read{ID: "@read1 1:N:0", Seq: "ACGT", Plus: "+", Qual: "AAAA"}
	require.NoError(t, fo.fqw.WriteWithName("read1:AAAC:GGTT", &r))
	require.NoError(t, fo.finish())

	assert.Equal(t, "@read1:AAAC:GGTT\nACGT\n+\nAAAA\n", buf.String())
}

func TestFastqOutputGzipRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	fo := newFastqOutput(&buf, true)

	r := fastq.Read{ID: "@read1", Seq: "ACGT", Plus: "+", Qual: "AAAA"}
	require.NoError(t, fo.fqw.WriteWithName("read1:AAAA:CCCC", &r))
	require.NoError(t, fo.finish())

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	data, err := ioutil.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, "@read1:AAAA:CCCC\nACGT\n+\nAAAA\n", string(data))
}
