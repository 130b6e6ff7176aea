package queryexec

// TermContext carries the immutable, segment-provided facts about a term
// within a segment (spec.md §3 "TermContext"). It is produced by the
// Segment and is otherwise opaque to this package.
type TermContext struct {
	Documents     uint32 // document frequency
	SumTermFreq   uint64 // sum of term frequencies across all documents
	PayloadOffset uint64 // opaque payload byte offset, passed through to the segment's decoder factory
}

// Decoder is a stateful forward cursor over one term's postings list
// (spec.md §3 "Decoder", §6). Implementations are supplied externally by
// a Segment; this package never constructs one directly.
type Decoder interface {
	// Begin positions the cursor at the first document.
	Begin()

	// CurDocID returns the document ID the cursor currently rests on.
	// Only valid after Begin has been called and Next/Seek has not yet
	// reported exhaustion.
	CurDocID() uint32

	// Seek advances the cursor to the first document ID >= target and
	// reports whether that document's ID equals target exactly.
	Seek(target uint32) bool

	// Next advances to the next document and reports whether one exists.
	Next() bool

	// Freq returns the number of hits (occurrences) of the term in the
	// document the cursor currently rests on.
	Freq() uint32

	// MaterializeHits writes one record per hit position of the current
	// document into out (which the caller has already sized via Freq),
	// and flips the corresponding bits in bitmap so phrase matching can
	// test adjacency. termID is the query-local TermID to stamp each bit
	// with.
	MaterializeHits(bitmap *PositionBitmap, termID TermID, out []TermHit)
}

// Segment is the read-only, per-query-immutable index slice this engine
// executes against (spec.md §6 "Segment"). It is an external
// collaborator: this package never builds or mutates one.
type Segment interface {
	// ResolveTerm returns the segment-native term ID for text, or ok=false
	// if the term does not occur in this segment at all.
	ResolveTerm(text string) (id uint64, ok bool)

	// TermCtx returns the immutable facts about a previously resolved
	// segment-native term ID.
	TermCtx(segmentTermID uint64) TermContext

	// NewPostingsDecoder creates a fresh Decoder for a term, given its
	// TermContext (as returned by TermCtx).
	NewPostingsDecoder(ctx TermContext) Decoder

	// MaxIndexedPosition returns the upper bound on in-document hit
	// positions this segment ever records; used to size DocWordsSpace.
	MaxIndexedPosition() uint32
}

// MaskedRegistry is the read-only masked-documents registry consulted by
// the driver (spec.md §6): documents it reports as masked are skipped
// entirely, never reaching the interpreter.
type MaskedRegistry interface {
	Contains(docID uint32) bool
}
