package queryexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tok(text string) *Node {
	return &Node{Type: NodeToken, Terms: []Term{{Text: text}}}
}

func TestNormalizeRootAndFolding(t *testing.T) {
	falseNode := &Node{Type: NodeConstFalse}

	t.Run("and with false child collapses", func(t *testing.T) {
		n := &Node{Type: NodeBinOp, Op: OpAnd, LHS: tok("a"), RHS: &Node{Type: NodeConstFalse}}
		got := NormalizeRoot(n)
		assert.Equal(t, NodeConstFalse, got.Type)
	})

	t.Run("or with one false child degenerates to sibling", func(t *testing.T) {
		a := tok("a")
		n := &Node{Type: NodeBinOp, Op: OpOr, LHS: a, RHS: &Node{Type: NodeConstFalse}}
		got := NormalizeRoot(n)
		assert.Same(t, a, got)
	})

	t.Run("or with both false collapses", func(t *testing.T) {
		n := &Node{Type: NodeBinOp, Op: OpOr, LHS: &Node{Type: NodeConstFalse}, RHS: &Node{Type: NodeConstFalse}}
		got := NormalizeRoot(n)
		assert.Equal(t, NodeConstFalse, got.Type)
	})

	t.Run("not with false lhs collapses", func(t *testing.T) {
		n := &Node{Type: NodeBinOp, Op: OpNot, LHS: &Node{Type: NodeConstFalse}, RHS: tok("a")}
		got := NormalizeRoot(n)
		assert.Equal(t, NodeConstFalse, got.Type)
	})

	t.Run("not with false rhs degenerates to lhs", func(t *testing.T) {
		a := tok("a")
		n := &Node{Type: NodeBinOp, Op: OpNot, LHS: a, RHS: &Node{Type: NodeConstFalse}}
		got := NormalizeRoot(n)
		assert.Same(t, a, got)
	})

	t.Run("unaryop with false child collapses", func(t *testing.T) {
		n := &Node{Type: NodeUnaryOp, Op: OpAnd, Sub: falseNode}
		got := NormalizeRoot(n)
		assert.Equal(t, NodeConstFalse, got.Type)
	})
}

func TestLeaderNodes(t *testing.T) {
	a, b, c := tok("a"), tok("b"), tok("c")

	// a AND (b NOT c)  -- NOT's RHS never contributes a leader
	notC := &Node{Type: NodeBinOp, Op: OpNot, LHS: b, RHS: c}
	root := &Node{Type: NodeBinOp, Op: OpAnd, LHS: a, RHS: notC}

	leaders := LeaderNodes(root)
	var texts []string
	for _, n := range leaders {
		texts = append(texts, n.Terms[0].Text)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, texts)
}
