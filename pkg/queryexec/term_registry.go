package queryexec

// TermID is a dense 16-bit query-local term identifier (spec.md §3). Zero
// is reserved for "term absent from segment".
type TermID uint16

// TermHit is one occurrence of a term at a position, with its opaque
// payload bytes (spec.md §3 "TermHits").
type TermHit struct {
	Pos     uint32
	Payload uint64
}

// termHits is the growable, per-TermID hit buffer (spec.md §3
// "TermHits"): tagged with the doc ID it currently holds so repeated
// accesses for the same (term, doc) pair skip re-materialization (I2).
type termHits struct {
	all      []TermHit
	freq     uint16
	docID    uint32
	hasDocID bool
}

// setFreq grows all to hold newFreq records, rounding capacity up by
// Options.HitsSlack, matching term_hits::set_freq's "+32" slack
// (spec.md §3).
func (h *termHits) setFreq(newFreq uint16, slack uint16) {
	if int(newFreq) > cap(h.all) {
		h.all = make([]TermHit, newFreq, int(newFreq)+int(slack))
	} else {
		h.all = h.all[:newFreq]
	}
	h.freq = newFreq
}

// termRegistry is the Term Registry & Decoder Cache (C1, spec.md §4.1):
// interns query-term strings to dense TermIDs and caches one decoder and
// one hit buffer per ID. All three registry arrays are indexable
// directly by TermID; a TermID's slot is guaranteed non-nil once
// prepareDecoder has been called for it (invariant I1).
type termRegistry struct {
	seg  Segment
	opts Options

	byText map[string]TermID // query-local interning dictionary
	toSeg  map[TermID]uint64 // translation into the segment's native term-ID space
	ctx    map[TermID]TermContext

	decoders []Decoder  // sparse, indexable by TermID
	hits     []termHits // sparse, indexable by TermID
}

func newTermRegistry(seg Segment, opts Options) *termRegistry {
	return &termRegistry{
		seg:    seg,
		opts:   opts,
		byText: make(map[string]TermID),
		toSeg:  make(map[TermID]uint64),
		ctx:    make(map[TermID]TermContext),
	}
}

// resolveTerm interns text into a dense TermID (spec.md §4.1). On a
// miss it queries the segment for TermContext; if the term matches no
// documents it returns TermID 0 ("unresolvable") without allocating a
// decoder slot for it.
func (r *termRegistry) resolveTerm(text string) TermID {
	if id, ok := r.byText[text]; ok {
		return id
	}

	segID, ok := r.seg.ResolveTerm(text)
	if !ok {
		r.byText[text] = 0
		return 0
	}

	ctx := r.seg.TermCtx(segID)
	if ctx.Documents == 0 {
		r.byText[text] = 0
		return 0
	}

	id := TermID(len(r.byText) + 1) // 1-based, dense in insertion order
	r.byText[text] = id
	r.toSeg[id] = segID
	r.ctx[id] = ctx
	return id
}

// termCtx returns the previously resolved TermContext for id.
func (r *termRegistry) termCtx(id TermID) TermContext {
	return r.ctx[id]
}

// ensureCapacity grows decoders/hits to hold idx, with +8 slack
// (spec.md §4.1), zero-filling the newly added tail.
func (r *termRegistry) ensureCapacity(idx TermID) {
	if int(idx) < len(r.decoders) {
		return
	}
	newCap := int(idx) + 8
	grownDecoders := make([]Decoder, newCap)
	copy(grownDecoders, r.decoders)
	r.decoders = grownDecoders

	grownHits := make([]termHits, newCap)
	copy(grownHits, r.hits)
	r.hits = grownHits
}

// prepareDecoder creates a decoder and an empty TermHits entry for id if
// one doesn't already exist (spec.md §4.1). A no-op for TermID 0 or for
// an id that's already prepared.
func (r *termRegistry) prepareDecoder(id TermID) {
	if id == 0 {
		return
	}
	r.ensureCapacity(id)
	if r.decoders[id] != nil {
		return
	}
	ctx := r.ctx[id]
	r.decoders[id] = r.seg.NewPostingsDecoder(ctx)
	r.hits[id] = termHits{}
}

func (r *termRegistry) decoder(id TermID) Decoder {
	return r.decoders[id]
}

func (r *termRegistry) hitsFor(id TermID) *termHits {
	return &r.hits[id]
}

// tokenEvalCost returns TermContext.Documents for text, or math.MaxUint32
// if the term is unresolvable or matches nothing (spec.md §4.3).
func (r *termRegistry) tokenEvalCost(text string) uint32 {
	id := r.resolveTerm(text)
	if id == 0 {
		return costInfinite
	}
	return r.ctx[id].Documents
}

// phraseEvalCost sums token_eval_cost across every member token; any
// infinite member poisons the whole sum (spec.md §4.3).
func (r *termRegistry) phraseEvalCost(terms []Term) uint32 {
	var sum uint64
	for _, t := range terms {
		cost := r.tokenEvalCost(t.Text)
		if cost == costInfinite {
			return costInfinite
		}
		sum += uint64(cost)
		if sum >= uint64(costInfinite) {
			return costInfinite
		}
	}
	return uint32(sum)
}

// costInfinite is the optimizer's UINT_MAX sentinel (spec.md §4.3).
const costInfinite uint32 = 1<<32 - 1
