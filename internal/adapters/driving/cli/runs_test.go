package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortID(t *testing.T) {
	assert.Equal(t, "0c2f41aa", shortID("0c2f41aa-9a3b-4c51-8e5d-2f1d7b6a0e33"))
	assert.Equal(t, "deadbeef", shortID("deadbeef"))
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "", shortID(""))
}
