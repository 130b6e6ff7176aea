package queryexec

// execCtx is the per-query runtime context: the merge of spec.md's
// `runtime_ctx` (registry, bitmap, compiled side tables, current
// document) and `queryexec_ctx` (bank, match collection) into the single
// struct a compiled query actually needs at evaluation time. One execCtx
// is created per Execute call and is never shared across queries or
// goroutines (spec.md §5).
type execCtx struct {
	seg  Segment
	opts Options

	reg  *termRegistry
	comp *compiler

	bitmap   *PositionBitmap
	curDocID uint32

	bank *bank

	// originalQueryTermCtx holds, for every TermID resolved anywhere in
	// the query that lies outside a NOT branch, its compiled token/phrase
	// identity (rep/index) — this is the "not in a NOT branch" test used
	// by the match collector (spec.md §4.8 step 1, I3).
	originalQueryTermCtx map[TermID]matchedTermIdentity

	collectBuf []collectedIterator
}

// matchedTermIdentity is the (rep, index, termID) triple a matched query
// term carries, matching spec.md's `matched_query_term` shape minus the
// hits pointer (attached separately at collection time).
type matchedTermIdentity struct {
	Rep    uint8
	Index  uint16
	TermID TermID
}

// MatchedTerm is one element of the matched-terms list handed to the
// scoring callback (spec.md §6 "Scoring callback"): a query term together
// with its materialized in-document hit positions.
type MatchedTerm struct {
	Rep    uint8
	Index  uint16
	TermID TermID
	Hits   []TermHit
}

// newExecCtx wires a fresh runtime context around seg, ready to compile
// and evaluate queries against it.
func newExecCtx(seg Segment, opts Options) *execCtx {
	reg := newTermRegistry(seg, opts)
	return &execCtx{
		seg:                  seg,
		opts:                 opts,
		reg:                  reg,
		comp:                 newCompiler(reg),
		bitmap:               NewPositionBitmap(seg.MaxIndexedPosition()),
		bank:                 newBank(opts),
		originalQueryTermCtx: make(map[TermID]matchedTermIdentity),
	}
}

// reset primes the context for the next candidate document (spec.md
// §4.2/§4.6): the position bitmap is logically cleared and curDocID is
// updated.
func (ctx *execCtx) reset(docID uint32) {
	ctx.curDocID = docID
	ctx.bitmap.Reset(docID)
}

// materializeTermHits fills termID's hit buffer for the current document
// if it isn't already holding it (I2), decoding positions into both the
// buffer and the position bitmap.
func (ctx *execCtx) materializeTermHits(termID TermID) *termHits {
	th := ctx.reg.hitsFor(termID)
	if th.hasDocID && th.docID == ctx.curDocID {
		return th
	}

	dec := ctx.reg.decoder(termID)
	freq := dec.Freq()

	th.setFreq(uint16(freq), ctx.opts.HitsSlack)
	dec.MaterializeHits(ctx.bitmap, termID, th.all)
	th.docID = ctx.curDocID
	th.hasDocID = true

	return th
}
