package main

import (
	"fmt"
	"strings"

	"github.com/kittclouds/queryexec/pkg/queryexec"
)

// Parsing a boolean query string is an external collaborator per
// spec.md §1; SPEC_FULL.md §6 keeps this parser intentionally minimal
// and undocumented as "the" query language. Keywords match
// case-insensitively. Grammar:
//
//	expr    := orTerm ("OR" orTerm)*
//	orTerm  := andTerm ("AND" ["STRICT"] andTerm)*
//	andTerm := "NOT" atom | atom ("NOT" atom)*
//	atom    := "(" expr ")" | phrase | word
//
// A bare "NOT atom" with no preceding left-hand side compiles to a
// queryexec.NodeUnaryOp; "a NOT b" compiles to the binary exclusion
// NodeBinOp (Op: OpNot), matching the two NOT shapes ast.go exposes.

type queryParser struct {
	toks []string
	pos  int
}

func parseQuery(q string) (*queryexec.Node, error) {
	p := &queryParser{toks: tokenizeQuery(q)}
	if len(p.toks) == 0 {
		return nil, fmt.Errorf("empty query")
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected token %q", p.toks[p.pos])
	}
	return node, nil
}

func (p *queryParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *queryParser) keyword(kw string) bool {
	return strings.EqualFold(p.peek(), kw)
}

func (p *queryParser) parseOr() (*queryexec.Node, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") {
		p.pos++
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &queryexec.Node{Type: queryexec.NodeBinOp, Op: queryexec.OpOr, LHS: lhs, RHS: rhs}
	}
	return lhs, nil
}

func (p *queryParser) parseAnd() (*queryexec.Node, error) {
	lhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") {
		p.pos++
		strict := false
		if p.keyword("STRICT") {
			p.pos++
			strict = true
		}
		rhs, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		op := queryexec.OpAnd
		if strict {
			op = queryexec.OpStrictAnd
		}
		lhs = &queryexec.Node{Type: queryexec.NodeBinOp, Op: op, LHS: lhs, RHS: rhs}
	}
	return lhs, nil
}

func (p *queryParser) parseNot() (*queryexec.Node, error) {
	if p.keyword("NOT") {
		p.pos++
		sub, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		return &queryexec.Node{Type: queryexec.NodeUnaryOp, Op: queryexec.OpNot, Sub: sub}, nil
	}

	lhs, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.keyword("NOT") {
		p.pos++
		rhs, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		lhs = &queryexec.Node{Type: queryexec.NodeBinOp, Op: queryexec.OpNot, LHS: lhs, RHS: rhs}
	}
	return lhs, nil
}

func (p *queryParser) parseAtom() (*queryexec.Node, error) {
	tok := p.peek()
	if tok == "" {
		return nil, fmt.Errorf("unexpected end of query")
	}

	if tok == "(" {
		p.pos++
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing closing paren")
		}
		p.pos++
		return node, nil
	}

	if strings.HasPrefix(tok, `"`) {
		p.pos++
		words := strings.Fields(strings.Trim(tok, `"`))
		if len(words) == 0 {
			return nil, fmt.Errorf("empty phrase")
		}
		terms := make([]queryexec.Term, len(words))
		for i, w := range words {
			terms[i] = queryexec.Term{Text: strings.ToLower(w)}
		}
		if len(terms) == 1 {
			return &queryexec.Node{Type: queryexec.NodeToken, Terms: terms}, nil
		}
		return &queryexec.Node{Type: queryexec.NodePhrase, Terms: terms}, nil
	}

	p.pos++
	return &queryexec.Node{Type: queryexec.NodeToken, Terms: []queryexec.Term{{Text: strings.ToLower(tok)}}}, nil
}

// tokenizeQuery splits q into words, parens, and whole quoted phrases
// (each phrase token keeps its surrounding quotes for parseAtom to
// strip), the same shape pkg/qgram/query_verifier.go's clause splitter
// expects its inputs pre-tokenized into.
func tokenizeQuery(q string) []string {
	var toks []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}

	for _, r := range q {
		switch {
		case r == '"':
			cur.WriteRune(r)
			if inQuote {
				flush()
			}
			inQuote = !inQuote
		case inQuote:
			cur.WriteRune(r)
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}
