// Package memsegment is a reference, fully in-memory implementation of
// queryexec.Segment: a roaring-bitmap posting list per term, plus a
// per-document sorted hit-position slice, built from raw document text
// via an Aho-Corasick scan (analyzer.go). It exists to exercise and test
// pkg/queryexec end-to-end; it is not a production index format.
package memsegment

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/kittclouds/queryexec/pkg/queryexec"
)

// postingsEntry is one term's complete postings: a roaring bitmap of the
// documents it occurs in, mirroring pkg/qgram/posting_list.go's
// BitmapPostings, plus the per-document hit positions queryexec needs to
// test phrase adjacency (something BitmapPostings alone doesn't carry,
// since qgram never needed position-level matching).
type postingsEntry struct {
	docs      *roaring.Bitmap
	positions map[uint32][]uint32 // docID -> sorted, 1-based hit positions
}

// Segment is a complete in-memory index over a fixed document set.
type Segment struct {
	maxPos  uint32
	byText  map[string]uint64
	entries map[uint64]*postingsEntry
	docIDs  []uint32 // the full set of indexed documents, for callers building a MaskedSet

	// Stopwords records, purely for informational/debugging use, which
	// indexed terms are recognized stopwords. It never filters postings:
	// a stopword is indexed exactly like any other term.
	Stopwords map[string]bool
}

// NewSegment creates an empty segment bounded by maxPos, the highest
// in-document word position this segment will ever record.
func NewSegment(maxPos uint32) *Segment {
	return &Segment{
		maxPos:  maxPos,
		byText:  make(map[string]uint64),
		entries: make(map[uint64]*postingsEntry),
	}
}

// indexTerm records one occurrence of text at pos within docID,
// interning text into a segment-native term ID on first use.
func (s *Segment) indexTerm(text string, docID uint32, pos uint32) {
	id, ok := s.byText[text]
	if !ok {
		id = uint64(len(s.byText) + 1)
		s.byText[text] = id
		s.entries[id] = &postingsEntry{
			docs:      roaring.New(),
			positions: make(map[uint32][]uint32),
		}
	}
	entry := s.entries[id]
	entry.docs.Add(docID)
	entry.positions[docID] = append(entry.positions[docID], pos)
}

// ResolveTerm implements queryexec.Segment.
func (s *Segment) ResolveTerm(text string) (uint64, bool) {
	id, ok := s.byText[text]
	return id, ok
}

// TermCtx implements queryexec.Segment. PayloadOffset carries the
// segment-native term ID itself, since this in-memory format has no
// separate on-disk postings location for it to point to.
func (s *Segment) TermCtx(segmentTermID uint64) queryexec.TermContext {
	entry := s.entries[segmentTermID]
	if entry == nil {
		return queryexec.TermContext{}
	}
	var sumFreq uint64
	for _, hits := range entry.positions {
		sumFreq += uint64(len(hits))
	}
	return queryexec.TermContext{
		Documents:     uint32(entry.docs.GetCardinality()),
		SumTermFreq:   sumFreq,
		PayloadOffset: segmentTermID,
	}
}

// NewPostingsDecoder implements queryexec.Segment.
func (s *Segment) NewPostingsDecoder(ctx queryexec.TermContext) queryexec.Decoder {
	entry := s.entries[ctx.PayloadOffset]
	ids := entry.docs.ToArray()
	return &decoder{entry: entry, ids: ids}
}

// MaxIndexedPosition implements queryexec.Segment.
func (s *Segment) MaxIndexedPosition() uint32 {
	return s.maxPos
}

// DocumentIDs returns every document ID this segment has indexed, sorted
// ascending — useful for building a MaskedSet fixture in tests or tools.
func (s *Segment) DocumentIDs() []uint32 {
	if s.docIDs != nil {
		return s.docIDs
	}
	seen := make(map[uint32]bool)
	for _, entry := range s.entries {
		for docID := range entry.positions {
			seen[docID] = true
		}
	}
	ids := make([]uint32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	s.docIDs = ids
	return ids
}

// decoder implements queryexec.Decoder over one term's postingsEntry.
// ids is the entry's document set flattened to a sorted slice once at
// construction, matching the read-only, per-query-immutable contract a
// Decoder is given (spec.md §6 "Segment").
type decoder struct {
	entry *postingsEntry
	ids   []uint32
	idx   int
}

const sentinelDocID = math.MaxUint32

func (d *decoder) Begin() {
	d.idx = 0
}

func (d *decoder) CurDocID() uint32 {
	if d.idx >= len(d.ids) {
		return sentinelDocID
	}
	return d.ids[d.idx]
}

func (d *decoder) Seek(target uint32) bool {
	for d.idx < len(d.ids) && d.ids[d.idx] < target {
		d.idx++
	}
	return d.idx < len(d.ids) && d.ids[d.idx] == target
}

func (d *decoder) Next() bool {
	d.idx++
	return d.idx < len(d.ids)
}

func (d *decoder) Freq() uint32 {
	if d.idx >= len(d.ids) {
		return 0
	}
	return uint32(len(d.entry.positions[d.ids[d.idx]]))
}

func (d *decoder) MaterializeHits(bitmap *queryexec.PositionBitmap, termID queryexec.TermID, out []queryexec.TermHit) {
	if d.idx >= len(d.ids) {
		return
	}
	hits := d.entry.positions[d.ids[d.idx]]
	for i, pos := range hits {
		out[i] = queryexec.TermHit{Pos: pos}
		bitmap.Set(termID, pos)
	}
}
