package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// startTurnTimer resolves the turn with TurnTimeout once d has elapsed. The
// returned stop func must be called when the turn ends any other way; a
// timer that fires after the turn was already resolved changes nothing.
func startTurnTimer(roomID string, turn *internal.Turn, d time.Duration) (stop func() bool) {
	t := time.AfterFunc(d, func() {
		if turn.Resolve(internal.TurnTimeout) {
			log.Debug().Str("room", roomID).Int("turn", turn.Seq).Dur("after", d).Msg("turn timed out")
			return
		}
		log.Debug().Str("room", roomID).Int("turn", turn.Seq).Msg("stale turn timer ignored")
	})
	return t.Stop
}

// awaitTurnEnd blocks until the turn is resolved. A cancelled room context
// resolves it as closed.
func awaitTurnEnd(ctx context.Context, turn *internal.Turn) internal.TurnEndReason {
	select {
	case <-turn.Done():
	case <-ctx.Done():
		turn.Resolve(internal.TurnRoomClosed)
	}
	return turn.Reason()
}

// awaitWordChoice waits for the drawer's pick. After timeout (if positive)
// the first candidate is used. ok is false when the turn ended before a
// word was picked.
func awaitWordChoice(ctx context.Context, turn *internal.Turn, timeout time.Duration) (word string, auto bool, ok bool) {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case word = <-turn.Chosen():
		return word, false, true
	case <-expired:
		if len(turn.Choices) == 0 {
			return "", true, false
		}
		// The drawer may have picked at the same instant; whoever claimed
		// the turn first wins.
		auto = turn.Choose(turn.Choices[0])
		return <-turn.Chosen(), auto, true
	case <-turn.Done():
		return "", false, false
	case <-ctx.Done():
		turn.Resolve(internal.TurnRoomClosed)
		return "", false, false
	}
}
