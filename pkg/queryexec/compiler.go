package queryexec

// OpCode identifies the handler an ExecNode dispatches to (spec.md §4.5).
// The numeric order matches the original executor's enum and the
// interpreter's handler table exactly, since nothing depends on the
// values beyond indexing that table.
type OpCode uint8

const (
	OpMatchToken OpCode = iota
	OpLogicalAnd
	OpLogicalOr
	OpMatchPhrase
	OpLogicalNot
	OpUnaryAnd
	OpUnaryNot
	OpConstFalse
)

// ExecNode is the packed, 4-byte-equivalent compiled node (spec.md §3
// "ExecNode"): an opcode, flags (currently unused, reserved the way the
// original reserves them), and an index into the opcode's side table.
type ExecNode struct {
	ImplIdx OpCode
	Flags   uint8
	CtxIdx  uint16
}

type binopCtx struct {
	LHS ExecNode
	RHS ExecNode
}

type unaryopCtx struct {
	Expr ExecNode
}

type tokenCtx struct {
	Rep    uint8
	Index  uint8
	TermID TermID
}

type phraseCtx struct {
	Rep     uint8
	Index   uint16
	Size    uint8
	TermIDs []TermID
}

// compiler lowers an optimized AST into ExecNodes plus append-only side
// tables (spec.md §4.4). Side-table indices are stable for the lifetime
// of one compiled query.
type compiler struct {
	reg *termRegistry

	binops   []binopCtx
	unaryops []unaryopCtx
	tokens   []tokenCtx
	phrases  []phraseCtx
}

func newCompiler(reg *termRegistry) *compiler {
	return &compiler{reg: reg}
}

func (c *compiler) registerBinop(lhs, rhs ExecNode) uint16 {
	c.binops = append(c.binops, binopCtx{LHS: lhs, RHS: rhs})
	return uint16(len(c.binops) - 1)
}

func (c *compiler) registerUnaryop(expr ExecNode) uint16 {
	c.unaryops = append(c.unaryops, unaryopCtx{Expr: expr})
	return uint16(len(c.unaryops) - 1)
}

func (c *compiler) registerToken(n *Node) uint16 {
	id := c.reg.resolveTerm(n.Terms[0].Text)
	c.reg.prepareDecoder(id)
	c.tokens = append(c.tokens, tokenCtx{Rep: n.Rep, Index: n.Index, TermID: id})
	return uint16(len(c.tokens) - 1)
}

func (c *compiler) registerPhrase(n *Node) uint16 {
	ids := make([]TermID, len(n.Terms))
	for i, t := range n.Terms {
		id := c.reg.resolveTerm(t.Text)
		c.reg.prepareDecoder(id)
		ids[i] = id
	}
	c.phrases = append(c.phrases, phraseCtx{
		Rep:     n.Rep,
		Index:   uint16(n.Index),
		Size:    uint8(len(n.Terms)),
		TermIDs: ids,
	})
	return uint16(len(c.phrases) - 1)
}

// compile translates one optimized AST node (and, recursively, its
// children) into an ExecNode (spec.md §4.4).
func (c *compiler) compile(n *Node) (ExecNode, error) {
	if n == nil {
		return ExecNode{}, compileError(NodeDummy)
	}

	switch n.Type {
	case NodeDummy:
		return ExecNode{}, compileError(NodeDummy)

	case NodeToken:
		return ExecNode{ImplIdx: OpMatchToken, CtxIdx: c.registerToken(n)}, nil

	case NodePhrase:
		if len(n.Terms) == 1 {
			return ExecNode{ImplIdx: OpMatchToken, CtxIdx: c.registerToken(n)}, nil
		}
		return ExecNode{ImplIdx: OpMatchPhrase, CtxIdx: c.registerPhrase(n)}, nil

	case NodeBinOp:
		var impl OpCode
		switch n.Op {
		case OpAnd, OpStrictAnd:
			impl = OpLogicalAnd
		case OpOr:
			impl = OpLogicalOr
		case OpNot:
			impl = OpLogicalNot
		default:
			return ExecNode{}, compileError(n.Type)
		}

		lhs, err := c.compile(n.LHS)
		if err != nil {
			return ExecNode{}, err
		}
		rhs, err := c.compile(n.RHS)
		if err != nil {
			return ExecNode{}, err
		}
		return ExecNode{ImplIdx: impl, CtxIdx: c.registerBinop(lhs, rhs)}, nil

	case NodeConstFalse:
		return ExecNode{ImplIdx: OpConstFalse}, nil

	case NodeUnaryOp:
		var impl OpCode
		switch n.Op {
		case OpAnd, OpStrictAnd:
			impl = OpUnaryAnd
		case OpNot:
			impl = OpUnaryNot
		default:
			return ExecNode{}, compileError(n.Type)
		}

		expr, err := c.compile(n.Sub)
		if err != nil {
			return ExecNode{}, err
		}
		return ExecNode{ImplIdx: impl, CtxIdx: c.registerUnaryop(expr)}, nil

	default:
		return ExecNode{}, compileError(n.Type)
	}
}
