package memsegment

import (
	"sort"
	"strings"
	"unicode"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
	"github.com/orsinium-labs/stopwords"
)

// normalizeRaw lowercases text and collapses punctuation to spaces,
// the same normalization pkg/dafsa's dictionary applies before pattern
// matching, generalized here to full-corpus indexing rather than a
// fixed entity-alias dictionary.
func normalizeRaw(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for _, ch := range s {
		c := unicode.ToLower(ch)
		switch {
		case c == '’':
			out.WriteRune('\'')
		case unicode.IsLetter(c) || unicode.IsDigit(c) || c == '\'':
			out.WriteRune(c)
		default:
			out.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(out.String()), " ")
}

// BuildSegment indexes docs (docID -> raw field text) into a fresh
// Segment bounded by maxPos. Rather than tokenizing each document
// independently, it first collects the corpus-wide vocabulary, builds a
// single Aho-Corasick automaton over it (the same one-pass
// multi-pattern approach pkg/qgram/query_verifier.go uses to verify
// many clauses against a document at once, here turned around to
// resolve many vocabulary terms against a document in one scan instead
// of a per-token map lookup), and rescans each document with it to
// assign 1-based word positions in document order.
func BuildSegment(docs map[uint32]string, maxPos uint32) *Segment {
	seg := NewSegment(maxPos)

	vocab := make(map[string]bool)
	for _, text := range docs {
		for _, w := range strings.Fields(normalizeRaw(text)) {
			vocab[w] = true
		}
	}

	patterns := make([]string, 0, len(vocab))
	for w := range vocab {
		patterns = append(patterns, w)
	}
	sort.Strings(patterns)

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false, // normalizeRaw already lowercased
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.StandardMatch,
		DFA:                  false,
	})
	ac := builder.Build(patterns)

	seg.Stopwords = make(map[string]bool, len(patterns))
	for _, w := range patterns {
		if stopwords.English.Contains(w) {
			seg.Stopwords[w] = true
		}
	}

	docIDs := make([]uint32, 0, len(docs))
	for docID := range docs {
		docIDs = append(docIDs, docID)
	}
	sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })

	for _, docID := range docIDs {
		normalized := normalizeRaw(docs[docID])
		if normalized == "" {
			continue
		}

		var pos uint32
		for _, m := range ac.FindAll(normalized) {
			pos++
			if pos > maxPos {
				break
			}
			seg.indexTerm(patterns[m.Pattern()], docID, pos)
		}
	}

	return seg
}
