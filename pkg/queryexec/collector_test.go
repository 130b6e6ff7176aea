package queryexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compileForCollection drives a query through Optimize/compile/prepare
// exactly as Execute does, returning the context and compiled root so
// tests can call collectMatches directly and inspect internal state.
func compileForCollection(t *testing.T, seg Segment, root *Node) (*execCtx, ExecNode) {
	t.Helper()
	ctx := newExecCtx(seg, DefaultOptions())
	optimized := NormalizeRoot(Optimize(root, ctx.reg))
	require.NotNil(t, optimized)
	compiled, err := ctx.comp.compile(optimized)
	require.NoError(t, err)
	ctx.prepareMatchCollection(compiled)
	return ctx, compiled
}

func TestPrepareMatchCollectionExcludesNotBranch(t *testing.T) {
	seg := buildDemoSegment()
	root := &Node{Type: NodeBinOp, Op: OpNot, LHS: tok("sat"), RHS: tok("dog")}

	ctx, _ := compileForCollection(t, seg, root)

	satID := ctx.reg.byText["sat"]
	dogID := ctx.reg.byText["dog"]

	_, satOK := ctx.originalQueryTermCtx[satID]
	_, dogOK := ctx.originalQueryTermCtx[dogID]

	assert.True(t, satOK, "sat is on the positive (LHS) side of NOT")
	assert.False(t, dogOK, "dog is on the excluded (RHS) side of NOT and must not be collectible")
}

func TestPrepareMatchCollectionUnaryNotExcludes(t *testing.T) {
	seg := buildDemoSegment()
	root := &Node{Type: NodeUnaryOp, Op: OpNot, Sub: tok("dog")}

	ctx, _ := compileForCollection(t, seg, root)

	dogID := ctx.reg.byText["dog"]
	_, ok := ctx.originalQueryTermCtx[dogID]
	assert.False(t, ok)
}

func TestCollectMatchesDedupesRepeatedTerm(t *testing.T) {
	seg := buildDemoSegment()
	// cat AND cat: the same TermID reachable from two leaves must only
	// be captured once per document (I3).
	root := &Node{Type: NodeBinOp, Op: OpAnd, LHS: tok("cat"), RHS: tok("cat")}

	ctx, compiled := compileForCollection(t, seg, root)
	ctx.reset(1)
	require.True(t, eval(compiled, ctx))

	matches := ctx.collectMatches(compiled)
	assert.Len(t, matches, 1)
}

func TestCollectMatchesReturnsHits(t *testing.T) {
	seg := buildDemoSegment()
	root := tok("cat")

	ctx, compiled := compileForCollection(t, seg, root)
	ctx.reset(1)
	require.True(t, eval(compiled, ctx))

	matches := ctx.collectMatches(compiled)
	require.Len(t, matches, 1)
	require.Len(t, matches[0].Hits, 1)
	assert.Equal(t, uint32(2), matches[0].Hits[0].Pos)
}
