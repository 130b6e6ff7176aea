package queryexec

// PositionBitmap is the per-document (TermID × position) bit set used to
// test phrase adjacency (spec.md §3 "DocWordsSpace", §4.2). Reset is O(1):
// rather than clearing storage, it bumps a generation counter and
// compares it against a per-cell epoch recorded when the cell was last
// set, matching the design note's "generation-stamped scratch" approach
// (spec.md §9).
type PositionBitmap struct {
	maxPos     uint32
	generation uint32

	// epochs[termID][pos] holds the generation at which (termID, pos) was
	// last set. A cell tests true iff its epoch equals the current
	// generation. Rows grow lazily per TermID actually touched.
	epochs [][]uint32
}

// NewPositionBitmap creates a bitmap bounded by the segment's
// max_indexed_position (spec.md §4.2).
func NewPositionBitmap(maxPos uint32) *PositionBitmap {
	return &PositionBitmap{maxPos: maxPos, generation: 1}
}

// Reset logically clears the bitmap for a new document in O(1) by
// bumping the generation. docID is accepted (rather than dropped) to
// mirror DocWordsSpace::reset's signature and to leave a hook for
// future per-document tracing, even though the current implementation
// doesn't need the value to invalidate prior sets.
func (b *PositionBitmap) Reset(docID uint32) {
	_ = docID
	b.generation++
	if b.generation == 0 {
		// Wrapped past uint32 max: every stale epoch is now indistinguishable
		// from a fresh one at generation 0, so force a real clear this once.
		for i := range b.epochs {
			row := b.epochs[i]
			for j := range row {
				row[j] = 0
			}
		}
		b.generation = 1
	}
}

func (b *PositionBitmap) ensureRow(termID TermID) []uint32 {
	for int(termID) >= len(b.epochs) {
		b.epochs = append(b.epochs, nil)
	}
	row := b.epochs[termID]
	if row == nil {
		row = make([]uint32, b.maxPos+1)
		b.epochs[termID] = row
	}
	return row
}

// Set records that termID occurs at pos in the current document.
func (b *PositionBitmap) Set(termID TermID, pos uint32) {
	if pos > b.maxPos {
		return
	}
	row := b.ensureRow(termID)
	row[pos] = b.generation
}

// Test reports whether termID was recorded at pos in the current
// document.
func (b *PositionBitmap) Test(termID TermID, pos uint32) bool {
	if pos > b.maxPos || int(termID) >= len(b.epochs) {
		return false
	}
	row := b.epochs[termID]
	if row == nil {
		return false
	}
	return row[pos] == b.generation
}
