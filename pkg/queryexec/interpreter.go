package queryexec

// nodeImpl is the handler-function shape the opcode table dispatches to
// (spec.md §4.5): each takes the ExecNode being evaluated (for its
// CtxIdx) and the runtime context, and returns whether it matched.
type nodeImpl func(self ExecNode, ctx *execCtx) bool

// implementations is the dense jump table indexed by OpCode, matching
// the original's `static constexpr node_impl implementations[]` — a
// function-pointer table rather than a virtual-dispatch hierarchy
// (spec.md §9 "Dynamic dispatch via function-pointer table"). It is
// filled in init because the compound handlers call eval, which reads
// the table, and a package-level initializer would form a cycle.
var implementations [OpConstFalse + 1]nodeImpl

func init() {
	implementations = [...]nodeImpl{
		OpMatchToken:  matchTokenImpl,
		OpLogicalAnd:  logicalAndImpl,
		OpLogicalOr:   logicalOrImpl,
		OpMatchPhrase: matchPhraseImpl,
		OpLogicalNot:  logicalNotImpl,
		OpUnaryAnd:    unaryAndImpl,
		OpUnaryNot:    unaryNotImpl,
		OpConstFalse:  constFalseImpl,
	}
}

// eval is the interpreter's entry point (spec.md §4.5): dispatches
// through the opcode table, recursing for compound nodes.
func eval(node ExecNode, ctx *execCtx) bool {
	return implementations[node.ImplIdx](node, ctx)
}

// matchTokenImpl is a pure existence check: does the term occur in the
// current document at all? It does not materialize positions — that
// only happens lazily, during phrase matching or match collection
// (spec.md §4.5 "MatchToken").
func matchTokenImpl(self ExecNode, ctx *execCtx) bool {
	t := ctx.comp.tokens[self.CtxIdx]
	if t.TermID == 0 {
		return false
	}
	dec := ctx.reg.decoder(t.TermID)
	return dec.Seek(ctx.curDocID)
}

// matchPhraseImpl implements spec.md §4.5's three-step phrase-matching
// algorithm for a phrase of size n>=2 with term IDs t0..t(n-1):
//
//  1. Seek every member term to curDocID; any miss means no match.
//  2. Materialize every term except t0 (their hits are needed to test
//     adjacency, not to anchor the scan).
//  3. Materialize t0 and, for each of its positions p > 0, check that
//     tI occurs at p+i for i=1..n-1. The first such p is a match.
//
// Position 0 is reserved and always skipped.
func matchPhraseImpl(self ExecNode, ctx *execCtx) bool {
	p := ctx.comp.phrases[self.CtxIdx]
	firstTermID := p.TermIDs[0]

	dec := ctx.reg.decoder(firstTermID)
	if !dec.Seek(ctx.curDocID) {
		return false
	}

	n := int(p.Size)
	for i := 1; i < n; i++ {
		termID := p.TermIDs[i]
		if !ctx.reg.decoder(termID).Seek(ctx.curDocID) {
			return false
		}
		ctx.materializeTermHits(termID)
	}

	th := ctx.materializeTermHits(firstTermID)

	for _, hit := range th.all {
		pos := hit.Pos
		if pos == 0 {
			continue
		}

		matched := true
		for i := 1; i < n; i++ {
			if !ctx.bitmap.Test(p.TermIDs[i], pos+uint32(i)) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}

	return false
}

func logicalAndImpl(self ExecNode, ctx *execCtx) bool {
	op := ctx.comp.binops[self.CtxIdx]
	return eval(op.LHS, ctx) && eval(op.RHS, ctx)
}

func logicalOrImpl(self ExecNode, ctx *execCtx) bool {
	op := ctx.comp.binops[self.CtxIdx]
	return eval(op.LHS, ctx) || eval(op.RHS, ctx)
}

// logicalNotImpl implements binary NOT: "LHS matches and RHS does not"
// (spec.md §4.5 "LogicalNot").
func logicalNotImpl(self ExecNode, ctx *execCtx) bool {
	op := ctx.comp.binops[self.CtxIdx]
	return eval(op.LHS, ctx) && !eval(op.RHS, ctx)
}

// unaryAndImpl/unaryNotImpl/constFalseImpl resolve spec.md §9's open
// question conservatively: rather than leaving these as unreachable
// no-ops (the original's own comments suspect normalize() always strips
// them before execution), they are wired to their obvious semantics so a
// query that does reach the interpreter with one of these shapes still
// evaluates correctly instead of silently returning false.
func unaryAndImpl(self ExecNode, ctx *execCtx) bool {
	op := ctx.comp.unaryops[self.CtxIdx]
	return eval(op.Expr, ctx)
}

func unaryNotImpl(self ExecNode, ctx *execCtx) bool {
	op := ctx.comp.unaryops[self.CtxIdx]
	return !eval(op.Expr, ctx)
}

func constFalseImpl(ExecNode, *execCtx) bool {
	return false
}
