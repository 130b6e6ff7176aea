package queryexec

import "math"

// candidateDocument is the per-document bookkeeping record the bank
// hands out (spec.md §3 "CandidateDocument"): the matched terms
// collected so far for this document, plus the generation-stamped
// capturedSeq array that lets the match collector test "has this
// TermID already been added to MatchedTerms for the current visit"
// in O(1) without clearing anything between documents (I3).
type candidateDocument struct {
	docID uint32
	inUse bool

	// curDocSeq is bumped every time this record is handed back out for
	// a (possibly different) document; capturedSeq[id] == curDocSeq
	// means TermID id was already captured during the current visit.
	curDocSeq   uint16
	capturedSeq []uint16

	matchedTerms []MatchedTerm
}

// reset reinitializes cd for docID, matching queryexec_ctx's
// candidate_document::reset: MatchedTerms is cleared and curDocSeq
// advances so every previously captured TermID reads as stale. On
// wraparound past uint16 max, capturedSeq is actually zeroed once
// rather than relying on a seq value that can no longer be
// distinguished from a fresh slot.
func (cd *candidateDocument) reset(docID uint32) {
	cd.docID = docID
	cd.inUse = true
	cd.matchedTerms = cd.matchedTerms[:0]

	if cd.curDocSeq == math.MaxUint16 {
		for i := range cd.capturedSeq {
			cd.capturedSeq[i] = 0
		}
		cd.curDocSeq = 1
	} else {
		cd.curDocSeq++
	}
}

func (cd *candidateDocument) ensureCapturedSeq(id TermID) {
	for int(id) >= len(cd.capturedSeq) {
		cd.capturedSeq = append(cd.capturedSeq, 0)
	}
}

// tryCapture reports whether id has not yet been recorded for this
// document during the current visit, stamping it if so. A false
// return means the caller already added id to matchedTerms and must
// not add it again (I3).
func (cd *candidateDocument) tryCapture(id TermID) bool {
	cd.ensureCapturedSeq(id)
	if cd.capturedSeq[id] == cd.curDocSeq {
		return false
	}
	cd.capturedSeq[id] = cd.curDocSeq
	return true
}

func (cd *candidateDocument) addMatch(m MatchedTerm) {
	cd.matchedTerms = append(cd.matchedTerms, m)
}

// bankSlab is one power-of-two slab of candidate documents, indexed by
// docID - base (spec.md §3 "Bank"). liveCount tracks how many slots are
// currently occupied so the slab can be recycled the moment it empties
// out, without an O(size) scan.
type bankSlab struct {
	base      uint32
	docs      []*candidateDocument
	liveCount int
}

// bank is the Candidate-Document Bank (C7, spec.md §4.7): a sparse
// collection of fixed-size slabs keyed by a power-of-two base, with a
// single-slab cache (lastSlab) for the common case of sequential
// same-bank lookups during the leader-merge scan, plus bounded free
// lists for both documents and slabs so steady-state execution
// allocates nothing once warmed up.
type bank struct {
	opts Options
	size uint32 // power of two; base = docID &^ (size-1)

	slabs    map[uint32]*bankSlab
	lastSlab *bankSlab

	reusableDocs  []*candidateDocument
	reusableSlabs []*bankSlab

	// retained is tracked_docrefs[] (spec.md §4.7): every candidateDocument
	// handed to trackDocref, swept by gcRetainedDocs(base) once the
	// driver's current document advances far enough past it.
	retained []*candidateDocument
}

func newBank(opts Options) *bank {
	size := opts.BankSize
	if size == 0 {
		size = 1024
	}
	return &bank{
		opts:  opts,
		size:  size,
		slabs: make(map[uint32]*bankSlab),
	}
}

func (b *bank) baseOf(docID uint32) uint32 {
	return docID &^ (b.size - 1)
}

func (b *bank) slabFor(docID uint32) *bankSlab {
	base := b.baseOf(docID)
	if b.lastSlab != nil && b.lastSlab.base == base {
		return b.lastSlab
	}
	slab, ok := b.slabs[base]
	if !ok {
		slab = b.newSlab(base)
		b.slabs[base] = slab
	}
	b.lastSlab = slab
	return slab
}

func (b *bank) newSlab(base uint32) *bankSlab {
	var slab *bankSlab
	if n := len(b.reusableSlabs); n > 0 {
		slab = b.reusableSlabs[n-1]
		b.reusableSlabs = b.reusableSlabs[:n-1]
		for i := range slab.docs {
			slab.docs[i] = nil
		}
		slab.liveCount = 0
	} else {
		slab = &bankSlab{docs: make([]*candidateDocument, b.size)}
	}
	slab.base = base
	return slab
}

// documentByID returns the candidateDocument for docID, creating or
// recycling one as needed (spec.md §4.7 "document_by_id"/"bank_for").
// A record found already holding docID (revisited within the same
// generation, e.g. re-entered via a second leader) is returned as-is
// without resetting, so accumulated matchedTerms/capturedSeq survive.
func (b *bank) documentByID(docID uint32) *candidateDocument {
	slab := b.slabFor(docID)
	idx := docID - slab.base
	cd := slab.docs[idx]
	if cd == nil {
		cd = b.newCandidateDocument()
		slab.docs[idx] = cd
		slab.liveCount++
		cd.reset(docID)
		return cd
	}
	if !cd.inUse || cd.docID != docID {
		cd.reset(docID)
	}
	return cd
}

func (b *bank) newCandidateDocument() *candidateDocument {
	if n := len(b.reusableDocs); n > 0 {
		cd := b.reusableDocs[n-1]
		b.reusableDocs = b.reusableDocs[:n-1]
		return cd
	}
	return &candidateDocument{}
}

// trackDocref registers cd onto tracked_docrefs[] (spec.md §4.7
// "track_docref"): every candidate document a match produces is
// tracked here so gcRetainedDocs can later reclaim its bank slot once
// the driver's current document has advanced past it. Tracking the
// same cd more than once is harmless but wasteful; callers track a
// document at most once per visit.
func (b *bank) trackDocref(cd *candidateDocument) {
	b.retained = append(b.retained, cd)
}

// gcRetainedDocs releases every tracked document with id < base,
// trimming from the back then the front of retained (spec.md §4.7
// "gc_retained_docs(base)"; I6/P8: "no retained document has id < base"
// afterwards for whatever it actually swept). This is a deliberate
// compromise avoiding a heap while exploiting the driver's
// near-monotonic access pattern: entries left in the middle may still
// be below base and are swept by a later call once they reach an end.
func (b *bank) gcRetainedDocs(base uint32) {
	for len(b.retained) > 0 {
		last := len(b.retained) - 1
		if b.retained[last].docID >= base {
			break
		}
		b.releaseDocument(b.retained[last])
		b.retained = b.retained[:last]
	}
	for len(b.retained) > 0 && b.retained[0].docID < base {
		b.releaseDocument(b.retained[0])
		b.retained = b.retained[1:]
	}
}

// releaseDocument returns cd to its slab slot and then to the
// reusable-document free list (spec.md §4.7 "cds_release"). It looks
// up cd's slab without creating one: if the slab was already recycled
// (emptied and returned to reusableSlabs), there is nothing to clear
// and creating a fresh one here would both resurrect a phantom slab
// and skip the liveCount decrement on the slab actually holding cd,
// corrupting I4's set-count accounting.
func (b *bank) releaseDocument(cd *candidateDocument) {
	base := b.baseOf(cd.docID)
	if slab, ok := b.slabs[base]; ok {
		idx := cd.docID - slab.base
		if slab.docs[idx] == cd {
			slab.docs[idx] = nil
			slab.liveCount--
			if slab.liveCount == 0 {
				b.recycleSlab(slab)
			}
		}
	}

	cd.inUse = false
	cd.matchedTerms = cd.matchedTerms[:0]
	if len(b.reusableDocs) < b.opts.ReusableDocsCapacity {
		b.reusableDocs = append(b.reusableDocs, cd)
	}
}

func (b *bank) recycleSlab(slab *bankSlab) {
	delete(b.slabs, slab.base)
	if b.lastSlab == slab {
		b.lastSlab = nil
	}
	if len(b.reusableSlabs) < b.opts.ReusableBanksCapacity {
		b.reusableSlabs = append(b.reusableSlabs, slab)
	}
}
