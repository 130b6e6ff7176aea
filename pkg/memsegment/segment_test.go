package memsegment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/queryexec/pkg/queryexec"
)

func TestBuildSegmentIndexesWordPositions(t *testing.T) {
	docs := map[uint32]string{
		1: "the cat sat on the mat",
		2: "the dog sat on the mat",
	}

	seg := BuildSegment(docs, 16)

	catID, ok := seg.ResolveTerm("cat")
	require.True(t, ok)

	ctx := seg.TermCtx(catID)
	assert.Equal(t, uint32(1), ctx.Documents)

	dec := seg.NewPostingsDecoder(ctx)
	dec.Begin()
	require.True(t, dec.Seek(1))
	assert.Equal(t, uint32(1), dec.Freq())

	bitmap := queryexec.NewPositionBitmap(seg.MaxIndexedPosition())
	bitmap.Reset(1)
	hits := make([]queryexec.TermHit, dec.Freq())
	dec.MaterializeHits(bitmap, queryexec.TermID(1), hits)

	require.Len(t, hits, 1)
	assert.Equal(t, uint32(2), hits[0].Pos) // "cat" is the 2nd word
}

func TestBuildSegmentUnknownTermNotResolved(t *testing.T) {
	seg := BuildSegment(map[uint32]string{1: "alpha beta"}, 8)

	_, ok := seg.ResolveTerm("gamma")
	assert.False(t, ok)
}

func TestBuildSegmentDecoderSeekAcrossDocuments(t *testing.T) {
	docs := map[uint32]string{
		1: "alpha beta",
		3: "alpha gamma",
		7: "delta alpha",
	}
	seg := BuildSegment(docs, 8)

	id, ok := seg.ResolveTerm("alpha")
	require.True(t, ok)
	ctx := seg.TermCtx(id)
	assert.Equal(t, uint32(3), ctx.Documents)

	dec := seg.NewPostingsDecoder(ctx)
	dec.Begin()

	assert.False(t, dec.Seek(2)) // lands on doc 3, not an exact match
	assert.Equal(t, uint32(3), dec.CurDocID())
	assert.True(t, dec.Seek(7))
	assert.False(t, dec.Next(), "doc 7 is alpha's last posting")
}

func TestMaskedSet(t *testing.T) {
	m := NewMaskedSet()
	m.Mask(5)
	assert.True(t, m.Contains(5))
	assert.False(t, m.Contains(6))

	m.Unmask(5)
	assert.False(t, m.Contains(5))
}

func TestBuildSegmentDocumentIDs(t *testing.T) {
	docs := map[uint32]string{3: "x", 1: "y", 2: "z"}
	seg := BuildSegment(docs, 4)
	assert.Equal(t, []uint32{1, 2, 3}, seg.DocumentIDs())
}
