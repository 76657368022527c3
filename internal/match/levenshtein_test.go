package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_Empty(t *testing.T) {
	assert.Equal(t, 0, Distance("", ""))
	assert.Equal(t, 3, Distance("abc", ""))
	assert.Equal(t, 3, Distance("", "abc"))
}

func TestDistance_Identical(t *testing.T) {
	assert.Equal(t, 0, Distance("smith", "smith"))
}

func TestDistance_Classic(t *testing.T) {
	assert.Equal(t, 3, Distance("kitten", "sitting"))
	assert.Equal(t, 3, Distance("saturday", "sunday"))
	assert.Equal(t, 2, Distance("flaw", "lawn"))
	assert.Equal(t, 2, Distance("gumbo", "gambol"))
}

func TestDistance_Symmetric(t *testing.T) {
	assert.Equal(t, Distance("kitten", "sitting"), Distance("sitting", "kitten"))
}

func TestDistance_CountsRunesNotBytes(t *testing.T) {
	assert.Equal(t, 1, Distance("café", "cafe"))
	assert.Equal(t, 1, Distance("росс", "рос"))
}

func TestDistance_CaseSensitive(t *testing.T) {
	// Folding is the caller's job.
	assert.Equal(t, 1, Distance("Smith", "smith"))
}
