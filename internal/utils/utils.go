package utils

import (
	"crypto/rand"
	"strings"
	"unicode"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// GetMaskedWord replaces every letter with "_ " and keeps everything else,
// so "ice cream" becomes "_ _ _  _ _ _ _ _ ".
func GetMaskedWord(word string) string {
	if word == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range word {
		if unicode.IsLetter(r) {
			b.WriteString("_ ")
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const idAlphabet = "useandom-26T198340PX75pxJACKVERYMINDBUSHWOLF_GQZbfghjklqvwyzrict"

// GenerateID returns a random URL-safe identifier of the given length.
func GenerateID(length int) string {
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic("utils: crypto/rand unavailable: " + err.Error())
	}
	id := make([]byte, length)
	for i, b := range buf {
		id[i] = idAlphabet[b&63]
	}
	return string(id)
}
