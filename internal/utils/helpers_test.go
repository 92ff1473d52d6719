package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "Óleo usado de motor", CollapseSpaces("  Óleo\n usado\t\tde   motor \n"))
	assert.Equal(t, "", CollapseSpaces(" \n "))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5, "..."))
	assert.Equal(t, "ab...", TruncateRunes("abcdefgh", 5, "..."))
	assert.Equal(t, "ção", TruncateRunes("çãoxyz", 3, ""))
}

func TestNilIfEmpty(t *testing.T) {
	assert.Nil(t, NilIfEmpty("   "))
	assert.Equal(t, "x", *NilIfEmpty(" x "))
	assert.Equal(t, "", StrOrEmpty(nil))
	assert.Equal(t, 3, *Ptr(3))
}
