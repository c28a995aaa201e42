package game

import (
	"math"
	"slices"
	"time"

	"github.com/scythe504/skribblr/internal"
)

// Score is the guesser's reward: MaxPoints scaled by the fraction of the
// round still left, rounded down. Late guesses score 0, never negative.
func Score(startTime time.Time, roundDuration time.Duration, now time.Time) int {
	if roundDuration <= 0 {
		return 0
	}
	total := roundDuration.Seconds()
	elapsed := now.Sub(startTime).Seconds()

	points := int(math.Floor((total - elapsed) / total * internal.MaxPoints))
	return min(max(points, 0), internal.MaxPoints)
}

// CalculateFinalResults compiles leaderboard and awards from a finished
// game. Callers hold room.Mu.
func CalculateFinalResults(room *internal.Room, finishedAt time.Time) internal.FinalResults {
	results := internal.FinalResults{
		RoomID:     room.Id,
		FinishedAt: finishedAt,
	}

	playerData := make([]internal.GameResultData, 0, len(room.Players))
	for _, player := range room.Roster() {
		playerData = append(playerData, internal.GameResultData{
			PlayerID: player.Id,
			Username: player.Name(),
			Score:    player.Score,
		})
	}

	// Stable so that ties keep join order.
	slices.SortStableFunc(playerData, func(a, b internal.GameResultData) int {
		return b.Score - a.Score
	})
	for idx := range playerData {
		playerData[idx].Position = idx + 1
	}
	results.Leaderboard = playerData

	if len(playerData) > 0 {
		mvp := playerData[0]
		results.MVP = &mvp
	}

	var fastest *internal.GameResultData
	for _, stat := range room.RoundStats {
		for _, guess := range stat.CorrectGuesses {
			if fastest == nil || guess.GuessTime < fastest.TimeToGuess {
				fastest = &internal.GameResultData{
					PlayerID:    guess.PlayerID,
					Username:    guess.Username,
					TimeToGuess: guess.GuessTime,
				}
			}
		}
	}
	results.FastestGuess = fastest

	results.RoundsPlayed = room.RoundNumber
	results.TotalPlayers = len(room.Players)
	return results
}
