package game

import (
	"testing"
	"time"

	"github.com/scythe504/skribblr/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	round := 30 * time.Second

	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"immediate", 0, 500},
		{"one third", 10 * time.Second, 333},
		{"half", 15 * time.Second, 250},
		{"last millisecond", round - time.Millisecond, 0},
		{"deadline", round, 0},
		{"late guess floors at zero", round + 5*time.Second, 0},
		{"clock skew caps at max", -time.Second, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(start, round, start.Add(tt.elapsed)))
		})
	}

	t.Run("zero duration", func(t *testing.T) {
		assert.Zero(t, Score(start, 0, start))
	})
}

func TestScoreIsMonotonic(t *testing.T) {
	start := time.Now()
	round := 40 * time.Second

	prev := Score(start, round, start)
	for elapsed := 250 * time.Millisecond; elapsed <= round; elapsed += 250 * time.Millisecond {
		s := Score(start, round, start.Add(elapsed))
		assert.LessOrEqual(t, s, prev, "score rose at %s", elapsed)
		prev = s
	}
}

func TestCalculateFinalResults(t *testing.T) {
	room := internal.NewRoom("room1", internal.DefaultSettings())
	now := time.Now()
	for _, p := range []struct {
		id    string
		score int
	}{{"a", 300}, {"b", 900}, {"c", 300}, {"d", 0}} {
		player := internal.NewPlayer(internal.Identity{Id: p.id, Name: "name-" + p.id}, now)
		player.Score = p.score
		room.AddPlayer(player)
	}
	room.RoundNumber = 2
	room.RoundStats = []internal.RoundStats{
		{DrawerId: "a", CorrectGuesses: []internal.PlayerGuess{
			{PlayerID: "b", Username: "name-b", GuessTime: 4200},
			{PlayerID: "c", Username: "name-c", GuessTime: 9000},
		}},
		{DrawerId: "b", CorrectGuesses: []internal.PlayerGuess{
			{PlayerID: "a", Username: "name-a", GuessTime: 1800},
		}},
		{DrawerId: "c", EndReason: internal.TurnTimeout},
	}

	results := CalculateFinalResults(room, now)

	require.Len(t, results.Leaderboard, 4)
	ids := make([]string, 0, 4)
	for i, r := range results.Leaderboard {
		assert.Equal(t, i+1, r.Position)
		ids = append(ids, r.PlayerID)
	}
	// Ties keep join order.
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids)

	require.NotNil(t, results.MVP)
	assert.Equal(t, "b", results.MVP.PlayerID)
	assert.Equal(t, 900, results.MVP.Score)

	require.NotNil(t, results.FastestGuess)
	assert.Equal(t, "a", results.FastestGuess.PlayerID)
	assert.Equal(t, int64(1800), results.FastestGuess.TimeToGuess)

	assert.Equal(t, "room1", results.RoomID)
	assert.Equal(t, 2, results.RoundsPlayed)
	assert.Equal(t, 4, results.TotalPlayers)
	assert.Equal(t, now, results.FinishedAt)
}

func TestCalculateFinalResultsWithoutGuesses(t *testing.T) {
	room := internal.NewRoom("room1", internal.DefaultSettings())
	room.AddPlayer(internal.NewPlayer(internal.Identity{Id: "a"}, time.Now()))

	results := CalculateFinalResults(room, time.Now())
	assert.Nil(t, results.FastestGuess)
	require.NotNil(t, results.MVP)
	assert.Equal(t, "a", results.MVP.PlayerID)
}
