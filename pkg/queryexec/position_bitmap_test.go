package queryexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionBitmapSetAndTest(t *testing.T) {
	b := NewPositionBitmap(8)

	b.Reset(1)
	b.Set(TermID(1), 3)

	assert.True(t, b.Test(TermID(1), 3))
	assert.False(t, b.Test(TermID(1), 4))
	assert.False(t, b.Test(TermID(2), 3), "unset term must read false")
}

func TestPositionBitmapResetClearsPriorDocument(t *testing.T) {
	b := NewPositionBitmap(8)

	b.Reset(1)
	b.Set(TermID(1), 3)
	assert.True(t, b.Test(TermID(1), 3))

	b.Reset(2)
	assert.False(t, b.Test(TermID(1), 3), "stale bit from previous document must not survive Reset")
}

func TestPositionBitmapOutOfRangeIsFalse(t *testing.T) {
	b := NewPositionBitmap(4)
	b.Reset(1)

	assert.False(t, b.Test(TermID(1), 100))
	b.Set(TermID(1), 100) // must not panic; silently dropped
}

func TestPositionBitmapGenerationWraparound(t *testing.T) {
	b := NewPositionBitmap(4)
	b.generation = 1<<32 - 1 // force the next Reset to wrap

	b.Set(TermID(1), 1)
	b.Reset(2)

	assert.Equal(t, uint32(1), b.generation)
	assert.False(t, b.Test(TermID(1), 1), "wraparound must force a real clear, not a stale-generation false positive")
}
