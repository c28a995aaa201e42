package internal

import (
	"time"
)

// Player is owned by its Room and keyed by connection id.
type Player struct {
	Id       string   `json:"id"`
	Identity Identity `json:"identity"`
	Score    int      `json:"score"`

	// Game state
	HasGuessed    bool      `json:"has_guessed"`
	LastGuessTime time.Time `json:"last_guess_time"`
	JoinedAt      time.Time `json:"joined_at"`

	// Statistics
	CorrectGuesses int `json:"correct_guesses"`
	TimesDrawn     int `json:"times_drawn"`
}

type PlayerSnapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     any    `json:"avatar,omitempty"`
	Score      int    `json:"score"`
	HasGuessed bool   `json:"has_guessed"`
}

func NewPlayer(identity Identity, now time.Time) *Player {
	return &Player{
		Id:       identity.Id,
		Identity: identity,
		JoinedAt: now,
	}
}

func (p *Player) Name() string {
	return p.Identity.Name
}

func (p *Player) ResetTurnState() {
	p.HasGuessed = false
	p.LastGuessTime = time.Time{}
}

// ResetGameState clears everything a finished game accumulated.
func (p *Player) ResetGameState() {
	p.ResetTurnState()
	p.Score = 0
	p.CorrectGuesses = 0
	p.TimesDrawn = 0
}

func CreatePlayerSnapshot(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		ID:         p.Id,
		Name:       p.Identity.Name,
		Avatar:     p.Identity.Avatar,
		Score:      p.Score,
		HasGuessed: p.HasGuessed,
	}
}
