package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	a, b := Generate(), Generate()
	assert.NotEqual(t, a, b)
	assert.True(t, Valid(a))
	assert.Len(t, GenerateShort(), 8)
	assert.False(t, Valid(GenerateShort()))
}

func TestMatch(t *testing.T) {
	ids := []string{"3f2a0000-0000-0000-0000-000000000000", "3f9b0000-0000-0000-0000-000000000000"}

	tests := []struct {
		prefix string
		want   string
		ok     bool
	}{
		{"3f2", ids[0], true},
		{"3f", "", false},
		{"ff", "", false},
		{"", "", false},
		{ids[1], ids[1], true},
	}
	for _, tt := range tests {
		got, ok := Match(tt.prefix, ids)
		assert.Equal(t, tt.ok, ok, "prefix %q", tt.prefix)
		assert.Equal(t, tt.want, got, "prefix %q", tt.prefix)
	}
}
