package queryexec

// collectedIterator is one pending frame of the explicit, stack-based
// match-collection walk (spec.md §4.8): a compiled node together with
// whether it lies beneath a NOT's excluded branch. execCtx.collectBuf
// reuses the backing array across documents so collection allocates
// nothing once warmed up, the same "reusable scratch" approach as
// PositionBitmap and the candidate-document bank.
type collectedIterator struct {
	node    ExecNode
	negated bool
}

// prepareMatchCollection computes, once per compiled query, the set of
// TermIDs that can ever legitimately appear in a matched-terms list:
// every Token/Phrase leaf reachable from root without crossing a NOT's
// excluded branch (spec.md §4.8 step 1, I3). It must be called once
// after compiling root and before the first collectMatches call for
// that query.
func (ctx *execCtx) prepareMatchCollection(root ExecNode) {
	for k := range ctx.originalQueryTermCtx {
		delete(ctx.originalQueryTermCtx, k)
	}

	var walk func(node ExecNode, negated bool)
	walk = func(node ExecNode, negated bool) {
		switch node.ImplIdx {
		case OpMatchToken:
			t := ctx.comp.tokens[node.CtxIdx]
			if !negated && t.TermID != 0 {
				ctx.originalQueryTermCtx[t.TermID] = matchedTermIdentity{Rep: t.Rep, Index: uint16(t.Index), TermID: t.TermID}
			}

		case OpMatchPhrase:
			p := ctx.comp.phrases[node.CtxIdx]
			if !negated {
				for _, id := range p.TermIDs {
					if id != 0 {
						ctx.originalQueryTermCtx[id] = matchedTermIdentity{Rep: p.Rep, Index: p.Index, TermID: id}
					}
				}
			}

		case OpLogicalAnd, OpLogicalOr:
			op := ctx.comp.binops[node.CtxIdx]
			walk(op.LHS, negated)
			walk(op.RHS, negated)

		case OpLogicalNot:
			op := ctx.comp.binops[node.CtxIdx]
			walk(op.LHS, negated)
			walk(op.RHS, true)

		case OpUnaryAnd:
			op := ctx.comp.unaryops[node.CtxIdx]
			walk(op.Expr, negated)

		case OpUnaryNot:
			op := ctx.comp.unaryops[node.CtxIdx]
			walk(op.Expr, true)
		}
	}
	walk(root, false)
}

// collectMatches walks the compiled tree for the current document
// (spec.md §4.8) and returns its accumulated matched-terms list. Every
// leaf beneath a NOT's excluded branch is skipped without descending
// further (there is nothing beneath a leaf); every other leaf is
// captured at most once per document via candidateDocument.tryCapture
// (I3), materializing its hits on first capture.
func (ctx *execCtx) collectMatches(root ExecNode) []MatchedTerm {
	cd := ctx.bank.documentByID(ctx.curDocID)
	ctx.bank.trackDocref(cd)

	ctx.collectBuf = append(ctx.collectBuf[:0], collectedIterator{node: root, negated: false})

	for len(ctx.collectBuf) > 0 {
		last := len(ctx.collectBuf) - 1
		frame := ctx.collectBuf[last]
		ctx.collectBuf = ctx.collectBuf[:last]

		switch frame.node.ImplIdx {
		case OpMatchToken:
			if frame.negated {
				continue
			}
			ctx.collectToken(cd, frame.node)

		case OpMatchPhrase:
			if frame.negated {
				continue
			}
			ctx.collectPhrase(cd, frame.node)

		// RHS is pushed before LHS so the LHS is popped, and collected,
		// first: matched terms come out in left-to-right tree order.
		case OpLogicalAnd, OpLogicalOr:
			op := ctx.comp.binops[frame.node.CtxIdx]
			ctx.collectBuf = append(ctx.collectBuf,
				collectedIterator{node: op.RHS, negated: frame.negated},
				collectedIterator{node: op.LHS, negated: frame.negated},
			)

		case OpLogicalNot:
			op := ctx.comp.binops[frame.node.CtxIdx]
			ctx.collectBuf = append(ctx.collectBuf,
				collectedIterator{node: op.RHS, negated: true},
				collectedIterator{node: op.LHS, negated: frame.negated},
			)

		case OpUnaryAnd:
			op := ctx.comp.unaryops[frame.node.CtxIdx]
			ctx.collectBuf = append(ctx.collectBuf, collectedIterator{node: op.Expr, negated: frame.negated})

		case OpUnaryNot:
			op := ctx.comp.unaryops[frame.node.CtxIdx]
			ctx.collectBuf = append(ctx.collectBuf, collectedIterator{node: op.Expr, negated: true})

		case OpConstFalse:
			// contributes nothing
		}
	}

	return cd.matchedTerms
}

func (ctx *execCtx) collectToken(cd *candidateDocument, node ExecNode) {
	t := ctx.comp.tokens[node.CtxIdx]
	ident, ok := ctx.originalQueryTermCtx[t.TermID]
	if !ok || !ctx.reg.decoder(ident.TermID).Seek(ctx.curDocID) {
		return
	}
	if !cd.tryCapture(ident.TermID) {
		return
	}
	th := ctx.materializeTermHits(ident.TermID)
	cd.addMatch(MatchedTerm{Rep: ident.Rep, Index: ident.Index, TermID: ident.TermID, Hits: th.all})
}

func (ctx *execCtx) collectPhrase(cd *candidateDocument, node ExecNode) {
	p := ctx.comp.phrases[node.CtxIdx]
	for _, id := range p.TermIDs {
		if id == 0 {
			continue
		}
		ident, ok := ctx.originalQueryTermCtx[id]
		if !ok || !ctx.reg.decoder(ident.TermID).Seek(ctx.curDocID) {
			continue
		}
		if !cd.tryCapture(ident.TermID) {
			continue
		}
		th := ctx.materializeTermHits(ident.TermID)
		cd.addMatch(MatchedTerm{Rep: ident.Rep, Index: ident.Index, TermID: ident.TermID, Hits: th.all})
	}
}
