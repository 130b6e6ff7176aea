package queryexec

// isUnary reports whether n is "cheap" to re-evaluate on its own — a leaf
// (Token/Phrase), a UnaryOp, or ConstFalse — as opposed to a BinOp, which
// requires evaluating two sub-expressions. This mirrors Trinity's
// ast_node::is_unary() and drives the shape-based reorder heuristic
// below (spec.md §4.3 "heuristic reorder").
func isUnary(n *Node) bool {
	return n != nil && n.Type != NodeBinOp
}

// heuristicReorder applies shape-based rewrites with no cost information
// (spec.md §4.3), iterating to a fixed point:
//
//   - For AND/STRICT_AND with a BinOp on the LHS and a leaf/unary on the
//     RHS, swap them so the cheap side evaluates first.
//   - For (X op Y) NOT L where op ∈ {AND, STRICT_AND}, X is unary, Y is a
//     BinOp, and L is unary, rewrite to (X NOT L) op Y — this moves the
//     cheap unary NOT check inward, ahead of the more expensive Y.
func heuristicReorder(root *Node) *Node {
	for {
		dirty := false
		reorderStep(root, &dirty)
		if !dirty {
			break
		}
	}
	return root
}

func reorderStep(n *Node, dirty *bool) {
	if n == nil || n.Type != NodeBinOp {
		return
	}

	lhs, rhs := n.LHS, n.RHS
	reorderStep(lhs, dirty)
	reorderStep(rhs, dirty)

	switch n.Op {
	case OpAnd, OpStrictAnd:
		if lhs.Type == NodeBinOp && isUnary(rhs) {
			n.LHS, n.RHS = rhs, lhs
			*dirty = true
		}

	case OpNot:
		// (X op Y) NOT L
		if isUnary(rhs) && lhs.Type == NodeBinOp {
			llhs, lrhs := lhs.LHS, lhs.RHS
			if isUnary(llhs) && lrhs.Type == NodeBinOp && (lhs.Op == OpAnd || lhs.Op == OpStrictAnd) {
				savedOp := lhs.Op

				lhs.RHS = rhs
				lhs.Op = OpNot
				// lhs is now (X NOT L); n becomes (lhs) op Y
				n.Op = savedOp
				n.RHS = lrhs
				*dirty = true
			}
		}
	}
}

// optimizeBinops runs the cost-aware post-order pass to a fixed point
// (spec.md §4.3): each pass computes per-subtree cost, folds unsatisfiable
// branches to ConstFalse, and swaps a BinOp's children if the RHS turned
// out cheaper. After any mutation the tree is re-normalized; the pass
// repeats until a pass makes no further changes (P6: the optimizer
// terminates in bounded steps since cost only ever clamps towards
// costInfinite and NormalizeRoot only ever removes nodes).
func optimizeBinops(root *Node, reg *termRegistry) *Node {
	for {
		updates := false
		optimizeBinopsImpl(root, reg, &updates)
		if !updates {
			break
		}
		root = NormalizeRoot(root)
		if root == nil {
			break
		}
	}
	return root
}

func optimizeBinopsImpl(n *Node, reg *termRegistry, updates *bool) uint32 {
	if n == nil {
		return 0
	}

	switch n.Type {
	case NodeToken:
		cost := reg.tokenEvalCost(n.Terms[0].Text)
		if cost == costInfinite {
			n.SetConstFalse()
			*updates = true
		}
		return cost

	case NodePhrase:
		cost := reg.phraseEvalCost(n.Terms)
		if cost == costInfinite {
			n.SetConstFalse()
			*updates = true
		}
		return cost

	case NodeBinOp:
		lhsCost := optimizeBinopsImpl(n.LHS, reg, updates)
		if lhsCost == costInfinite && (n.Op == OpAnd || n.Op == OpStrictAnd) {
			n.SetConstFalse()
			*updates = true
			return costInfinite
		}

		rhsCost := optimizeBinopsImpl(n.RHS, reg, updates)
		if rhsCost == costInfinite && lhsCost == costInfinite && n.Op == OpOr {
			n.SetConstFalse()
			*updates = true
			return costInfinite
		}

		if rhsCost < lhsCost && n.Op != OpNot {
			n.LHS, n.RHS = n.RHS, n.LHS
		}

		return lhsCost + rhsCost // deliberately wraps on overflow, matching the original's uint32 arithmetic

	case NodeUnaryOp:
		cost := optimizeBinopsImpl(n.Sub, reg, updates)
		if cost == costInfinite {
			n.SetConstFalse()
			*updates = true
		}
		return cost

	case NodeConstFalse:
		return costInfinite

	default:
		return 0
	}
}

// Optimize rewrites root per spec.md §4.3: a heuristic shape-based
// reorder pass first, then the cost-aware fold/swap pass to a fixed
// point. It returns the (possibly different, possibly ConstFalse)
// rewritten root.
func Optimize(root *Node, reg *termRegistry) *Node {
	root = heuristicReorder(root)
	root = optimizeBinops(root, reg)
	return root
}
