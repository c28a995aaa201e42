package internal

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Turn is the pending resolution of one drawer's turn. The word-choice
// mailbox accepts a single word and the turn can be resolved exactly once;
// whichever cause resolves it first wins and later attempts are no-ops.
type Turn struct {
	Seq     int
	Drawer  string
	Choices []string

	choice  chan string
	claimed atomic.Bool
	done    chan struct{}
	once    sync.Once
	reason  TurnEndReason
}

func NewTurn(seq int, drawer string, choices []string) *Turn {
	return &Turn{
		Seq:     seq,
		Drawer:  drawer,
		Choices: choices,
		choice:  make(chan string, 1),
		done:    make(chan struct{}),
	}
}

// Offered reports whether word was one of the candidates sent to the drawer.
func (t *Turn) Offered(word string) bool {
	return slices.Contains(t.Choices, word)
}

// Choose delivers a word for this turn. Only the first call succeeds, so
// the drawer's pick and an automatic pick cannot both land.
func (t *Turn) Choose(word string) bool {
	if !t.claimed.CompareAndSwap(false, true) {
		return false
	}
	t.choice <- word
	return true
}

func (t *Turn) Chosen() <-chan string {
	return t.choice
}

// Resolve ends the turn. Only the first caller wins.
func (t *Turn) Resolve(reason TurnEndReason) bool {
	won := false
	t.once.Do(func() {
		t.reason = reason
		close(t.done)
		won = true
	})
	return won
}

func (t *Turn) Done() <-chan struct{} {
	return t.done
}

func (t *Turn) Resolved() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Reason is only meaningful once Done is closed.
func (t *Turn) Reason() TurnEndReason {
	if !t.Resolved() {
		return ""
	}
	return t.reason
}
