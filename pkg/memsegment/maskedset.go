package memsegment

import "github.com/RoaringBitmap/roaring/v2"

// MaskedSet is a roaring-backed queryexec.MaskedRegistry: documents it
// contains are skipped entirely by the driver, the same bitmap-presence
// check pkg/qgram/posting_list.go's BitmapPostings.Contains performs,
// reused here for the "excluded from results" registry rather than a
// posting list.
type MaskedSet struct {
	bm *roaring.Bitmap
}

// NewMaskedSet creates an empty masked-documents registry.
func NewMaskedSet() *MaskedSet {
	return &MaskedSet{bm: roaring.New()}
}

// Mask adds docID to the registry.
func (m *MaskedSet) Mask(docID uint32) {
	m.bm.Add(docID)
}

// Unmask removes docID from the registry.
func (m *MaskedSet) Unmask(docID uint32) {
	m.bm.Remove(docID)
}

// Contains implements queryexec.MaskedRegistry.
func (m *MaskedSet) Contains(docID uint32) bool {
	return m.bm.Contains(docID)
}
