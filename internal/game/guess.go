package game

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal"
)

// =============================================================================
// GUESS HANDLING
// =============================================================================

// closeGuessDistance is the largest edit distance still reported as close.
const closeGuessDistance = 2

type VerdictKind int

const (
	VerdictDropped VerdictKind = iota
	VerdictChat
	VerdictClose
	VerdictExact
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictDropped:
		return "dropped"
	case VerdictChat:
		return "chat"
	case VerdictClose:
		return "close"
	case VerdictExact:
		return "exact"
	}
	return "unknown"
}

type Verdict struct {
	Kind     VerdictKind
	Distance int
}

// Classify compares a chat message with the active word, ignoring case and
// surrounding whitespace. Blank messages are dropped and everything is
// plain chat while no word is active.
func Classify(message, word string) Verdict {
	guess := strings.ToLower(strings.TrimSpace(message))
	if guess == "" {
		return Verdict{Kind: VerdictDropped, Distance: -1}
	}
	target := strings.ToLower(strings.TrimSpace(word))
	if target == "" {
		return Verdict{Kind: VerdictChat, Distance: -1}
	}

	d := levenshtein.ComputeDistance(guess, target)
	switch {
	case d == 0:
		return Verdict{Kind: VerdictExact}
	case d <= closeGuessDistance:
		return Verdict{Kind: VerdictClose, Distance: d}
	default:
		return Verdict{Kind: VerdictChat, Distance: d}
	}
}

// HandleMessage routes a chat message through the guess evaluator.
func (e *Engine) HandleMessage(connID, text string) error {
	room, err := e.registry.RoomOf(connID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	player := room.GetPlayer(connID)
	if player == nil {
		return ErrNotInRoom
	}

	word := ""
	if room.Phase == internal.PhaseDrawing {
		word = room.CurrentWord
	}
	verdict := Classify(text, word)
	chat := internal.ChatData{Message: text, Name: player.Name(), Id: connID}
	eligible := connID != room.Drawer && !player.HasGuessed

	switch verdict.Kind {
	case VerdictDropped:
		return ErrEmptyGuess

	case VerdictExact:
		// Only the author sees their exact guess.
		e.send(connID, internal.EventMessage, chat)
		if !eligible || room.Turn == nil || room.Turn.Resolved() {
			log.Debug().Str("room", room.Id).Str("player", connID).Msg("exact guess not scored")
			return nil
		}
		e.awardGuess(room, player)

	case VerdictClose:
		e.broadcastToRoom(room, internal.EventMessage, chat)
		if eligible {
			e.send(connID, internal.EventCloseGuess, chat)
		}

	default:
		e.broadcastToRoom(room, internal.EventMessage, chat)
	}
	return nil
}

// awardGuess scores a correct guess for the guesser and the drawer, and
// ends the turn once every non-drawer has guessed. Callers hold room.Mu.
func (e *Engine) awardGuess(room *internal.Room, player *internal.Player) {
	now := e.now()
	points := Score(room.StartTime, room.Settings.RoundDuration, now)

	player.HasGuessed = true
	player.LastGuessTime = now
	player.CorrectGuesses++
	player.Score += points
	room.TotalGuesses++

	drawerScore := 0
	if drawer := room.GetPlayer(room.Drawer); drawer != nil {
		drawer.Score += internal.DrawerBonus
		drawerScore = drawer.Score
	}

	room.CorrectGuessers = append(room.CorrectGuessers, internal.PlayerGuess{
		PlayerID:  player.Id,
		Username:  player.Name(),
		GuessTime: now.Sub(room.StartTime).Milliseconds(),
		Points:    points,
	})

	log.Debug().Str("room", room.Id).Str("player", player.Id).Int("points", points).
		Int("guesses", room.TotalGuesses).Int("players", room.TotalPlayers).Msg("correct guess")

	e.send(player.Id, internal.EventCorrectGuess, internal.ChatData{Message: room.CurrentWord})
	e.broadcastToRoom(room, internal.EventUpdateScore, internal.ScoreUpdateData{
		PlayerID:    player.Id,
		Score:       player.Score,
		DrawerID:    room.Drawer,
		DrawerScore: drawerScore,
	})

	if room.HasEveryoneGuessed() {
		room.Turn.Resolve(internal.TurnEverybodyGuessed)
	}
}
