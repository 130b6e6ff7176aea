package queryexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankDocumentByIDCreatesAndReuses(t *testing.T) {
	b := newBank(Options{BankSize: 4, ReusableDocsCapacity: 8, ReusableBanksCapacity: 4})

	cd := b.documentByID(10)
	require.NotNil(t, cd)
	assert.Equal(t, uint32(10), cd.docID)

	cd.addMatch(MatchedTerm{TermID: 1})
	assert.Len(t, cd.matchedTerms, 1)

	// Same docID within the same generation returns the same record with
	// its accumulated state intact.
	again := b.documentByID(10)
	assert.Same(t, cd, again)
	assert.Len(t, again.matchedTerms, 1)
}

func TestBankDocumentByIDDifferentDocsDoNotAlias(t *testing.T) {
	b := newBank(DefaultOptions())

	a := b.documentByID(1)
	c := b.documentByID(2)
	assert.NotSame(t, a, c)
	assert.Equal(t, uint32(1), a.docID)
	assert.Equal(t, uint32(2), c.docID)
}

func TestBankCrossSlabLookup(t *testing.T) {
	b := newBank(Options{BankSize: 4, ReusableDocsCapacity: 8, ReusableBanksCapacity: 4})

	inFirstSlab := b.documentByID(1)
	inSecondSlab := b.documentByID(5) // base 4, a different slab at BankSize=4

	assert.Equal(t, uint32(1), inFirstSlab.docID)
	assert.Equal(t, uint32(5), inSecondSlab.docID)
}

func TestCandidateDocumentTryCaptureDedupes(t *testing.T) {
	cd := &candidateDocument{}
	cd.reset(7)

	assert.True(t, cd.tryCapture(TermID(3)))
	assert.False(t, cd.tryCapture(TermID(3)), "a TermID already captured this generation must not recapture")
	assert.True(t, cd.tryCapture(TermID(4)), "a different TermID captures independently")
}

func TestCandidateDocumentResetAdvancesGeneration(t *testing.T) {
	cd := &candidateDocument{}
	cd.reset(1)
	cd.tryCapture(TermID(2))

	cd.reset(1) // revisited in a later pass over the same docID
	assert.False(t, cd.capturedSeq[2] == cd.curDocSeq, "a fresh generation must invalidate prior captures")
	assert.True(t, cd.tryCapture(TermID(2)), "TermID 2 must be capturable again after reset")
}

func TestCandidateDocumentResetWrapsCurDocSeq(t *testing.T) {
	cd := &candidateDocument{curDocSeq: 1<<16 - 1, capturedSeq: []uint16{1<<16 - 1, 1<<16 - 1}}

	cd.reset(9)

	assert.Equal(t, uint16(1), cd.curDocSeq)
	for _, v := range cd.capturedSeq {
		assert.Equal(t, uint16(0), v)
	}
}

func TestBankTrackAndGCRetainedDocs(t *testing.T) {
	b := newBank(Options{BankSize: 4, ReusableDocsCapacity: 8, ReusableBanksCapacity: 4})

	low := b.documentByID(1)
	high := b.documentByID(9)
	b.trackDocref(low)
	b.trackDocref(high)

	// base <= every tracked id: nothing is old enough to sweep yet.
	b.gcRetainedDocs(1)
	assert.Len(t, b.retained, 2, "no tracked doc has id < base")

	// base beyond low's id but not high's: only low is swept.
	b.gcRetainedDocs(5)
	require.Len(t, b.retained, 1, "doc below base must be swept")
	assert.Same(t, high, b.retained[0])

	b.gcRetainedDocs(10)
	assert.Len(t, b.retained, 0, "every tracked doc is now below base")
}

func TestBankGCRetainedDocsLeavesMiddleBelowBaseAlone(t *testing.T) {
	b := newBank(Options{BankSize: 16, ReusableDocsCapacity: 8, ReusableBanksCapacity: 4})

	// Front and back of retained are each >= base, so both trim passes
	// stop immediately without reaching the middle entry (id 2, below
	// base) — it is left in place even though it's stale, per spec.md's
	// documented back-then-front compromise.
	frontGuard := b.documentByID(10)
	stale := b.documentByID(2)
	backGuard := b.documentByID(11)
	b.trackDocref(frontGuard)
	b.trackDocref(stale)
	b.trackDocref(backGuard)

	b.gcRetainedDocs(5)
	require.Len(t, b.retained, 3, "middle entry below base is left alone until it reaches an end")
	assert.Same(t, frontGuard, b.retained[0])
	assert.Same(t, stale, b.retained[1])
	assert.Same(t, backGuard, b.retained[2])
}
