package queryexec

// fakeDecoder is a minimal in-memory Decoder over a sorted slice of
// (docID, positions) pairs, enough to exercise the interpreter/driver
// without depending on pkg/memsegment.
type fakeDecoder struct {
	postings []fakePosting
	idx      int
	termCtx  TermContext
}

type fakePosting struct {
	docID uint32
	hits  []uint32
}

func newFakeDecoder(postings []fakePosting) *fakeDecoder {
	return &fakeDecoder{postings: postings, idx: -1}
}

func (d *fakeDecoder) Begin() {
	d.idx = 0
}

func (d *fakeDecoder) CurDocID() uint32 {
	if d.idx < 0 || d.idx >= len(d.postings) {
		return 1<<32 - 1
	}
	return d.postings[d.idx].docID
}

func (d *fakeDecoder) Seek(target uint32) bool {
	if d.idx < 0 {
		d.idx = 0 // never begun: start from the first posting
	}
	for d.idx < len(d.postings) && d.postings[d.idx].docID < target {
		d.idx++
	}
	return d.idx < len(d.postings) && d.postings[d.idx].docID == target
}

func (d *fakeDecoder) Next() bool {
	d.idx++
	return d.idx < len(d.postings)
}

func (d *fakeDecoder) Freq() uint32 {
	if d.idx < 0 || d.idx >= len(d.postings) {
		return 0
	}
	return uint32(len(d.postings[d.idx].hits))
}

func (d *fakeDecoder) MaterializeHits(bitmap *PositionBitmap, termID TermID, out []TermHit) {
	if d.idx < 0 || d.idx >= len(d.postings) {
		return
	}
	for i, pos := range d.postings[d.idx].hits {
		out[i] = TermHit{Pos: pos}
		bitmap.Set(termID, pos)
	}
}

// fakeSegment is a hand-built Segment fixture: a fixed vocabulary, each
// term backed by its own fakeDecoder postings.
type fakeSegment struct {
	maxPos  uint32
	byText  map[string]uint64
	byID    map[uint64]TermContext
	newDecs map[uint64]func() *fakeDecoder
}

func newFakeSegment(maxPos uint32) *fakeSegment {
	return &fakeSegment{
		maxPos:  maxPos,
		byText:  make(map[string]uint64),
		byID:    make(map[uint64]TermContext),
		newDecs: make(map[uint64]func() *fakeDecoder),
	}
}

// addTerm registers text with the given postings (docID -> hit positions,
// in ascending docID order). PayloadOffset carries the segment-native
// term ID through TermContext, the way a real segment would use it to
// locate a postings block; this fixture reuses it to pick the right
// canned decoder back out in NewPostingsDecoder.
func (s *fakeSegment) addTerm(text string, postings []fakePosting) {
	id := uint64(len(s.byText) + 1)
	s.byText[text] = id
	s.byID[id] = TermContext{Documents: uint32(len(postings)), PayloadOffset: id}
	s.newDecs[id] = func() *fakeDecoder {
		return newFakeDecoder(postings)
	}
}

func (s *fakeSegment) ResolveTerm(text string) (uint64, bool) {
	id, ok := s.byText[text]
	return id, ok
}

func (s *fakeSegment) TermCtx(segmentTermID uint64) TermContext {
	return s.byID[segmentTermID]
}

func (s *fakeSegment) NewPostingsDecoder(ctx TermContext) Decoder {
	return s.newDecs[ctx.PayloadOffset]()
}

func (s *fakeSegment) MaxIndexedPosition() uint32 {
	return s.maxPos
}

type maskedSet map[uint32]bool

func (m maskedSet) Contains(docID uint32) bool {
	return m[docID]
}
