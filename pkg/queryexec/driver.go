package queryexec

import (
	"sort"
	"strings"
)

// ScoreFunc receives each matching document together with the query
// terms that contributed to the match, in left-to-right order of the
// optimized query tree (spec.md §6
// "Scoring callback"). It is the engine's only output channel: scoring
// itself is an external concern.
type ScoreFunc func(docID uint32, matches []MatchedTerm)

// leaderDecoder pairs a leader term's decoder with its TermID so the
// merge loop can advance it without a second registry lookup per step.
type leaderDecoder struct {
	termID TermID
	dec    Decoder
}

// selectLeaders resolves root's leader nodes (spec.md §4.6 "Leader
// tokens") to primed decoders: their surface text is deduplicated
// case-insensitively and sorted before resolution, so two leaders
// differing only in case collapse to a single decoder and the merge
// loop's advance order is deterministic across runs.
func selectLeaders(root *Node, reg *termRegistry) []leaderDecoder {
	nodes := LeaderNodes(root)

	seen := make(map[string]bool, len(nodes))
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if len(n.Terms) == 0 {
			continue
		}
		text := n.Terms[0].Text
		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		texts = append(texts, text)
	}

	sort.Slice(texts, func(i, j int) bool {
		return strings.ToLower(texts[i]) < strings.ToLower(texts[j])
	})

	leaders := make([]leaderDecoder, 0, len(texts))
	for _, text := range texts {
		id := reg.resolveTerm(text)
		if id == 0 {
			continue
		}
		reg.prepareDecoder(id)
		dec := reg.decoder(id)
		dec.Begin()
		leaders = append(leaders, leaderDecoder{termID: id, dec: dec})
	}
	return leaders
}

// minLeaderDoc returns the smallest CurDocID among leaders, and false
// if leaders is empty (every leader decoder has been exhausted).
func minLeaderDoc(leaders []leaderDecoder) (uint32, bool) {
	if len(leaders) == 0 {
		return 0, false
	}
	min := leaders[0].dec.CurDocID()
	for _, l := range leaders[1:] {
		if id := l.dec.CurDocID(); id < min {
			min = id
		}
	}
	return min, true
}

// advanceLeaders advances every leader currently resting on target and
// compacts out any that became exhausted (spec.md §4.6 "reverse-order
// advance"). Iterating back-to-front lets a slice removal reuse the
// same index without disturbing not-yet-visited entries.
func advanceLeaders(leaders []leaderDecoder, target uint32) []leaderDecoder {
	for i := len(leaders) - 1; i >= 0; i-- {
		if leaders[i].dec.CurDocID() != target {
			continue
		}
		if !leaders[i].dec.Next() {
			leaders = append(leaders[:i], leaders[i+1:]...)
		}
	}
	return leaders
}

// Execute compiles and runs root against seg, invoking score once per
// matching, unmasked document in ascending document-ID order (spec.md
// §4.6 "Leader-Merge Driver"). It returns ErrNoQuery if root is nil and
// ErrMalformedAST (wrapped with the offending node type) if compilation
// reaches a node the compiler cannot lower.
func Execute(seg Segment, masked MaskedRegistry, root *Node, opts Options, score ScoreFunc) error {
	if root == nil {
		return ErrNoQuery
	}

	ctx := newExecCtx(seg, opts)

	optimized := Optimize(root, ctx.reg)
	optimized = NormalizeRoot(optimized)
	if optimized == nil {
		return ErrNoQuery
	}
	if optimized.Type == NodeConstFalse {
		return nil
	}

	compiledRoot, err := ctx.comp.compile(optimized)
	if err != nil {
		return err
	}
	ctx.prepareMatchCollection(compiledRoot)

	leaders := selectLeaders(optimized, ctx.reg)
	if len(leaders) == 0 {
		return nil
	}

	sinceGC := 0
	var lastBase uint32
	haveLastBase := false

	for {
		if ctx.opts.Cancel != nil && ctx.opts.Cancel() {
			break
		}

		minID, ok := minLeaderDoc(leaders)
		if !ok {
			break
		}

		if masked == nil || !masked.Contains(minID) {
			base := ctx.bank.baseOf(minID)
			if !haveLastBase || base != lastBase {
				ctx.bank.gcRetainedDocs(minID)
				lastBase = base
				haveLastBase = true
			}

			ctx.reset(minID)
			if eval(compiledRoot, ctx) {
				matches := ctx.collectMatches(compiledRoot)
				score(minID, matches)

				sinceGC++
				if opts.GCInterval > 0 && sinceGC >= opts.GCInterval {
					ctx.bank.gcRetainedDocs(minID)
					sinceGC = 0
				}
			}
		}

		leaders = advanceLeaders(leaders, minID)
	}

	return nil
}
