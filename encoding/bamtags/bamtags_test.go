package bamtags

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAux(t *testing.T, name, val string) sam.Aux {
	aux, err := sam.NewAux(sam.NewTag(name), val)
	require.NoError(t, err)
	return aux
}

// newReference builds a reference with its ID assigned, which happens
// when the reference is added to a header.
func newReference(t *testing.T, name string, length int) *sam.Reference {
	ref, err := sam.NewReference(name, "", "", length, nil, nil)
	require.NoError(t, err)
	_, err = sam.NewHeader(nil, []*sam.Reference{ref})
	require.NoError(t, err)
	return ref
}

func newRecord(t *testing.T, name string, ref *sam.Reference, pos int, flags sam.Flags, tags map[string]string) *sam.Record {
	r := sam.GetFromFreePool()
	r.Name = name
	r.Ref = ref
	r.Pos = pos
	r.Flags = flags
	r.MapQ = 60
	r.Seq = sam.NewSeq([]byte("ACGT"))
	r.Qual = []byte{30, 30, 30, 30}
	for tag, val := range tags {
		r.AuxFields = append(r.AuxFields, newAux(t, tag, val))
	}
	return r
}

func TestFromSAM(t *testing.T) {
	ref := newReference(t, "chr1", 1000)

	r := newRecord(t, "read1", ref, 100, 0, map[string]string{
		"CB": "AAACCCAAGAAACACT",
		"UB": "GGGGTTTTAAAA",
		"GN": "ACTB",
		"GX": "ENSG00000075624",
	})
	rec := FromSAM(r)

	assert.Equal(t, "read1", rec.Name)
	assert.Equal(t, 0, rec.RefID)
	assert.Equal(t, 100, rec.Pos)
	assert.Equal(t, byte(60), rec.MapQ)
	assert.True(t, rec.Mapped)
	assert.False(t, rec.Reverse)
	assert.Equal(t, "AAACCCAAGAAACACT", rec.CellBarcode)
	assert.Equal(t, "GGGGTTTTAAAA", rec.UMI)
	assert.Equal(t, "ACTB", rec.GeneName)
	assert.Equal(t, "ENSG00000075624", rec.GeneID)
	assert.True(t, rec.HasCellTags())
	assert.True(t, rec.Assigned())
	assert.Equal(t, "ACTB", rec.Gene())
}

func TestFromSAMUnmapped(t *testing.T) {
	r := newRecord(t, "read2", nil, -1, sam.Unmapped, nil)
	rec := FromSAM(r)

	assert.False(t, rec.Mapped)
	assert.Equal(t, -1, rec.RefID)
	assert.False(t, rec.HasCellTags())
	assert.False(t, rec.Assigned())
	assert.Equal(t, "", rec.Gene())
}

func TestGeneFallsBackToID(t *testing.T) {
	ref := newReference(t, "chr1", 1000)

	r := newRecord(t, "read3", ref, 5, 0, map[string]string{
		"CB": "AAAA",
		"GX": "ENSG00000075624",
	})
	rec := FromSAM(r)

	assert.Equal(t, "", rec.GeneName)
	assert.Equal(t, "ENSG00000075624", rec.Gene())
	assert.True(t, rec.Assigned())
	assert.False(t, rec.HasCellTags(), "UMI tag missing")
}

func TestReverseFlag(t *testing.T) {
	ref := newReference(t, "chr2", 500)

	r := newRecord(t, "read4", ref, 7, sam.Reverse, nil)
	rec := FromSAM(r)
	assert.True(t, rec.Reverse)
	assert.True(t, rec.Mapped)
}
