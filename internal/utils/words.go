package utils

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var ErrEmptyWordBank = errors.New("word bank is empty")

// WordBank is the immutable list of candidate words.
type WordBank struct {
	words []string

	mu  sync.Mutex
	rng *rand.Rand
}

func NewWordBank(words []string) (*WordBank, error) {
	return NewWordBankWithSource(words, rand.NewSource(time.Now().UnixNano()))
}

// NewWordBankWithSource is NewWordBank with a caller-provided random source.
func NewWordBankWithSource(words []string, src rand.Source) (*WordBank, error) {
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w != "" {
			cleaned = append(cleaned, w)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrEmptyWordBank
	}
	return &WordBank{words: cleaned, rng: rand.New(src)}, nil
}

func (b *WordBank) Len() int {
	return len(b.words)
}

// Sample draws k words independently and uniformly, with replacement, so
// duplicates are possible. Indices are always within [0, Len()).
func (b *WordBank) Sample(k int) []string {
	if k <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	choices := make([]string, k)
	for i := range choices {
		choices[i] = b.words[b.rng.Intn(len(b.words))]
	}
	return choices
}
