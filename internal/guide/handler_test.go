package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Equal(t, []string{"trekking"}, splitCSV("trekking"))
	assert.Equal(t, []string{"trekking", "historical"}, splitCSV("trekking,historical"))
	// Whitespace around entries is trimmed and empty entries are dropped.
	assert.Equal(t, []string{"trekking", "historical"}, splitCSV(" trekking , ,historical,"))
}
