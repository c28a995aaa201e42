package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal"
	"github.com/scythe504/skribblr/internal/utils"
)

// =============================================================================
// GAME FLOW - ROUND MANAGEMENT
// =============================================================================

// StartGame snapshots the roster and starts the turn loop in its own
// goroutine. The other players are told the game has started.
func (e *Engine) StartGame(connID string) error {
	room, err := e.registry.RoomOf(connID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed {
		return ErrRoomNotFound
	}
	if room.InGame() {
		return ErrGameInProgress
	}
	if !room.CanStartGame() {
		return ErrNotEnoughPlayers
	}

	order := room.RosterIds()
	settings := room.Settings
	for _, p := range room.Players {
		p.ResetGameState()
	}
	room.RoundStats = make([]internal.RoundStats, 0)
	room.RoundNumber = 0
	room.TurnIndex = 0
	room.Phase = internal.PhaseChoosing

	log.Info().Str("room", room.Id).Str("player", connID).Strs("order", order).
		Int("rounds", settings.Rounds).Dur("round_duration", settings.RoundDuration).
		Msg("game started")

	e.broadcastToRoomExcept(room, internal.EventStartGame, nil, connID)

	e.games.Add(1)
	go e.runGame(room, order, settings)
	return nil
}

// runGame plays rounds x len(order) turns. A roster member who has left
// when their turn comes is skipped.
func (e *Engine) runGame(room *internal.Room, order []string, settings internal.Settings) {
	defer e.games.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("room", room.Id).Interface("panic", r).Msg("game loop crashed")
			room.Mu.Lock()
			room.ClearTurn()
			room.Phase = internal.PhaseLobby
			room.Mu.Unlock()
		}
	}()

	seq := 0
	for round := 1; round <= settings.Rounds; round++ {
		for k := range order {
			seq++
			reason, played := e.playTurn(room, order, round, k, seq, settings.RoundDuration)
			if !played {
				continue
			}
			switch reason {
			case "":
				e.EndGame(room)
				return
			case internal.TurnRoomClosed:
				log.Info().Str("room", room.Id).Msg("room closed, game loop exiting")
				return
			case internal.TurnNotEnoughPlayers:
				log.Info().Str("room", room.Id).Msg("not enough players left, ending game early")
				e.EndGame(room)
				return
			}
		}
	}
	e.EndGame(room)
}

// playTurn runs one drawer's turn to completion. played is false when the
// drawer is no longer in the room.
func (e *Engine) playTurn(room *internal.Room, order []string, round, k, seq int, duration time.Duration) (reason internal.TurnEndReason, played bool) {
	n := len(order)
	drawerID := order[k]
	previousID := order[(k-1+n)%n]

	room.Mu.Lock()
	if room.Closed {
		room.Mu.Unlock()
		return internal.TurnRoomClosed, true
	}
	if room.TotalPlayers < internal.MinPlayersToStart {
		room.Mu.Unlock()
		return internal.TurnNotEnoughPlayers, true
	}
	drawer := room.GetPlayer(drawerID)
	if drawer == nil {
		room.Mu.Unlock()
		log.Debug().Str("room", room.Id).Str("player", drawerID).Msg("drawer has left, skipping turn")
		return "", false
	}

	room.ResetPlayerGuessState()
	room.CurrentWord = ""
	room.Drawer = drawerID
	room.StartTime = e.now()
	room.RoundNumber = round
	room.TurnIndex = k
	room.Phase = internal.PhaseChoosing
	drawer.TimesDrawn++

	choices := e.words.Sample(internal.WordChoiceCount)
	if len(choices) == 0 {
		room.ClearTurn()
		room.Mu.Unlock()
		log.Error().Err(ErrSampling).Str("room", room.Id).Msg("no word choices, aborting game")
		return "", true
	}
	turn := internal.NewTurn(seq, drawerID, choices)
	room.Turn = turn
	room.WordChoices = choices

	log.Debug().Str("room", room.Id).Int("round", round).Int("turn", seq).
		Str("drawer", drawerID).Strs("choices", choices).Msg("turn started")

	if previousID != drawerID && room.GetPlayer(previousID) != nil {
		e.send(previousID, internal.EventDisableCanvas, nil)
	}
	e.broadcastToRoom(room, internal.EventChoosing, internal.ChoosingData{Name: drawer.Name()})
	e.send(drawerID, internal.EventChooseWord, choices)
	room.Mu.Unlock()

	word, auto, ok := awaitWordChoice(room.Context, turn, e.choiceTimeout)
	if !ok {
		return e.finishTurn(room, turn), true
	}

	room.Mu.Lock()
	if turn.Resolved() {
		room.Mu.Unlock()
		return e.finishTurn(room, turn), true
	}
	room.CurrentWord = word
	room.WordChoices = room.WordChoices[:0]
	room.Phase = internal.PhaseDrawing

	log.Debug().Str("room", room.Id).Int("turn", seq).Str("word", word).Bool("auto", auto).Msg("word chosen")

	e.send(drawerID, internal.EventWordChosen, internal.ChooseWordData{Word: word})
	e.broadcastToRoomExcept(room, internal.EventHideWord, internal.MaskedWordData{Word: utils.GetMaskedWord(word)}, drawerID)
	e.broadcastToRoom(room, internal.EventClearCanvas, nil)
	e.broadcastToRoom(room, internal.EventStartTimer, internal.TimerData{Time: duration.Milliseconds()})
	room.StartTime = e.now()
	stop := startTurnTimer(room.Id, turn, duration)
	room.Mu.Unlock()

	awaitTurnEnd(room.Context, turn)
	stop()
	return e.finishTurn(room, turn), true
}

// finishTurn records the turn's stats and reveals the word.
func (e *Engine) finishTurn(room *internal.Room, turn *internal.Turn) internal.TurnEndReason {
	reason := turn.Reason()

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Turn != turn {
		return reason
	}

	room.RoundStats = append(room.RoundStats, internal.RoundStats{
		RoundNumber:    room.RoundNumber,
		DrawerId:       turn.Drawer,
		Word:           room.CurrentWord,
		CorrectGuesses: room.CorrectGuessers,
		EndReason:      reason,
		StartTime:      room.StartTime,
		EndTime:        e.now(),
	})

	log.Debug().Str("room", room.Id).Int("turn", turn.Seq).Str("reason", string(reason)).
		Int("correct_guesses", room.TotalGuesses).Msg("turn ended")

	if !room.Closed {
		e.broadcastToRoom(room, internal.EventTurnEnd, internal.TurnEndData{Word: room.CurrentWord, Reason: reason})
	}
	room.ClearTurn()
	return reason
}

// ChooseWord hands the drawer's pick to the waiting turn.
func (e *Engine) ChooseWord(connID, word string) error {
	room, err := e.registry.RoomOf(connID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	turn := room.Turn
	if room.Phase != internal.PhaseChoosing || turn == nil || room.Drawer != connID {
		return ErrNotDrawer
	}
	if !turn.Offered(word) {
		return ErrInvalidWord
	}
	if !turn.Choose(word) {
		log.Debug().Str("room", room.Id).Str("player", connID).Msg("word already chosen, ignoring")
	}
	return nil
}

// EndGame broadcasts the final standings, records them, and returns the
// room to the lobby.
func (e *Engine) EndGame(room *internal.Room) {
	room.Mu.Lock()
	if room.Closed {
		room.Mu.Unlock()
		return
	}
	results := CalculateFinalResults(room, e.now())
	room.ClearTurn()
	room.Phase = internal.PhaseLobby
	e.broadcastToRoom(room, internal.EventGameOver, results)
	room.Mu.Unlock()

	log.Info().Str("room", room.Id).Int("rounds_played", results.RoundsPlayed).
		Int("players", results.TotalPlayers).Msg("game over")

	if e.results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.results.RecordGame(ctx, results); err != nil {
		log.Error().Err(err).Str("room", room.Id).Msg("failed to record game results")
	}
}
