package queryexec

import (
	"errors"
	"fmt"
)

// Error taxonomy per spec.md §7. Unresolvable terms and empty queries
// after optimization are normal outcomes, not errors — they surface as
// zero matches, never as a returned error. Only a missing root and
// programmer-error inputs (a Dummy node or Operator NONE reaching the
// compiler) are reported as errors here.
var (
	// ErrNoQuery is returned when the supplied root node is nil, or
	// normalizes/optimizes away to nothing at all (spec.md §7.2 treats a
	// ConstFalse root as "no results", not an error, but a nil root
	// indicates the caller never built a tree).
	ErrNoQuery = errors.New("queryexec: no root node")

	// ErrMalformedAST is returned when compilation reaches a Dummy node
	// or an Operator of OpNone (spec.md §7.3): a programming error in the
	// AST construction the caller is responsible for, surfaced rather
	// than panicking so a caller embedding this engine in a request path
	// can fail one query instead of the process.
	ErrMalformedAST = errors.New("queryexec: malformed AST (dummy node or missing operator)")
)

// compileError wraps ErrMalformedAST with the offending node's type for
// diagnostics.
func compileError(nt NodeType) error {
	return fmt.Errorf("%w: node type %d", ErrMalformedAST, nt)
}
