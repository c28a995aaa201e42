package internal

import (
	"time"
)

const (
	DefaultRounds        = 2
	DefaultRoundDuration = 40 * time.Second
	WordChoiceDuration   = 15 * time.Second
	MaxPlayersPerRoom    = 8
	MinPlayersToStart    = 2
	WordChoiceCount      = 3

	MinRounds       = 1
	MaxRounds       = 10
	MinRoundSeconds = 10
	MaxRoundSeconds = 300

	MaxPoints   = 500
	DrawerBonus = 250
)

type GamePhase string

const (
	PhaseLobby    GamePhase = "lobby"
	PhaseChoosing GamePhase = "choosing"
	PhaseDrawing  GamePhase = "drawing"
	PhaseEnded    GamePhase = "ending"
)

// TurnEndReason records which of the competing causes closed a turn.
type TurnEndReason string

const (
	TurnTimeout          TurnEndReason = "timeout"
	TurnEverybodyGuessed TurnEndReason = "everybodyGuessed"
	TurnDrawerLeft       TurnEndReason = "drawerLeft"
	TurnRoomClosed       TurnEndReason = "roomClosed"
	TurnNotEnoughPlayers TurnEndReason = "notEnoughPlayers"
)

// Settings is the per-room game configuration.
type Settings struct {
	Rounds        int           `json:"rounds"`
	RoundDuration time.Duration `json:"-"`
}

func DefaultSettings() Settings {
	return Settings{
		Rounds:        DefaultRounds,
		RoundDuration: DefaultRoundDuration,
	}
}

// Seconds is the round duration as the wire expresses it.
func (s Settings) Seconds() int {
	return int(s.RoundDuration / time.Second)
}

// Identity is what a client tells us about itself when it joins.
type Identity struct {
	Id     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Avatar any    `json:"avatar,omitempty"`
}

type PlayerGuess struct {
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	GuessTime int64  `json:"guess_time_ms"`
	Points    int    `json:"points"`
}

type RoundStats struct {
	RoundNumber    int           `json:"round_number"`
	DrawerId       string        `json:"drawer_id"`
	Word           string        `json:"word"`
	CorrectGuesses []PlayerGuess `json:"correct_guesses"`
	EndReason      TurnEndReason `json:"end_reason"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
}

type GameResultData struct {
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	Score       int    `json:"score"`
	Position    int    `json:"position"`
	TimeToGuess int64  `json:"time_to_guess_ms,omitempty"`
}

type FinalResults struct {
	RoomID       string           `json:"room_id"`
	Leaderboard  []GameResultData `json:"leaderboard"`
	MVP          *GameResultData  `json:"mvp,omitempty"`
	FastestGuess *GameResultData  `json:"fastest_guess,omitempty"`
	RoundsPlayed int              `json:"rounds_played"`
	TotalPlayers int              `json:"total_players"`
	FinishedAt   time.Time        `json:"finished_at"`
}
