package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMaskedWord(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"", ""},
		{"cat", "_ _ _ "},
		{"APPLE", "_ _ _ _ _ "},
		{"ice cream", "_ _ _  _ _ _ _ _ "},
		{"t-rex", "_ -_ _ _ "},
		{"r2d2", "_ 2_ 2"},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, GetMaskedWord(tt.word))
		})
	}
}

func TestGenerateID(t *testing.T) {
	assert.Empty(t, GenerateID(0))

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := GenerateID(15)
		assert.Len(t, id, 15)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(idAlphabet, r), "unexpected rune %q", r)
		}
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}
