package internal

import (
	"context"
	"slices"
	"sync"
	"time"
)

type Room struct {
	Id      string
	HostId  string
	Players map[string]*Player
	// Join order; the drawing rotation is a snapshot of it.
	Order        []string
	TotalPlayers int
	Settings     Settings

	// Game State
	Phase        GamePhase
	Drawer       string
	CurrentWord  string
	WordChoices  []string
	StartTime    time.Time
	TotalGuesses int
	RoundNumber  int
	TurnIndex    int
	Turn         *Turn

	// Guessing State
	CorrectGuessers []PlayerGuess
	RoundStats      []RoundStats

	Closed bool

	// Concurrency control
	Mu sync.Mutex `json:"-"`

	// Cancelled when the room is removed from the registry.
	Context context.Context    `json:"-"`
	Cancel  context.CancelFunc `json:"-"`
}

func NewRoom(id string, settings Settings) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	return &Room{
		Id:          id,
		Players:     make(map[string]*Player),
		Order:       make([]string, 0, MaxPlayersPerRoom),
		Settings:    settings,
		Phase:       PhaseLobby,
		WordChoices: make([]string, 0, WordChoiceCount),

		CorrectGuessers: make([]PlayerGuess, 0),
		RoundStats:      make([]RoundStats, 0),

		Context: ctx,
		Cancel:  cancel,
	}
}

// Methods (Room Struct)
func (r *Room) AddPlayer(p *Player) {
	if _, exists := r.Players[p.Id]; exists {
		return
	}
	r.Players[p.Id] = p
	r.Order = append(r.Order, p.Id)
	r.TotalPlayers++
	if r.HostId == "" {
		r.HostId = p.Id
	}
}

// RemovePlayer drops a player and keeps TotalGuesses consistent with the
// live roster.
func (r *Room) RemovePlayer(id string) (*Player, bool) {
	p, ok := r.Players[id]
	if !ok {
		return nil, false
	}
	delete(r.Players, id)
	r.Order = slices.DeleteFunc(r.Order, func(s string) bool { return s == id })
	r.TotalPlayers--
	if p.HasGuessed && r.TotalGuesses > 0 {
		r.TotalGuesses--
	}
	if r.HostId == id {
		r.HostId = ""
		if len(r.Order) > 0 {
			r.HostId = r.Order[0]
		}
	}
	return p, true
}

func (r *Room) GetPlayer(id string) *Player {
	return r.Players[id]
}

func (r *Room) GetPlayerCount() int {
	return r.TotalPlayers
}

// Roster returns the players in join order.
func (r *Room) Roster() []*Player {
	players := make([]*Player, 0, len(r.Order))
	for _, id := range r.Order {
		if p := r.Players[id]; p != nil {
			players = append(players, p)
		}
	}
	return players
}

func (r *Room) RosterIds() []string {
	return append([]string(nil), r.Order...)
}

func (r *Room) Snapshots() []PlayerSnapshot {
	snapshots := make([]PlayerSnapshot, 0, len(r.Order))
	for _, p := range r.Roster() {
		snapshots = append(snapshots, CreatePlayerSnapshot(p))
	}
	return snapshots
}

// Identities lists every member except the given connection.
func (r *Room) Identities(except string) []Identity {
	identities := make([]Identity, 0, len(r.Order))
	for _, p := range r.Roster() {
		if p.Id == except {
			continue
		}
		identities = append(identities, p.Identity)
	}
	return identities
}

func (r *Room) InGame() bool {
	return r.Phase == PhaseChoosing || r.Phase == PhaseDrawing
}

func (r *Room) CanStartGame() bool {
	return r.TotalPlayers >= MinPlayersToStart
}

func (r *Room) ResetPlayerGuessState() {
	for _, player := range r.Players {
		player.ResetTurnState()
	}
	r.TotalGuesses = 0
	r.CorrectGuessers = make([]PlayerGuess, 0)
}

// HasEveryoneGuessed compares against the live roster: every player other
// than the drawer has guessed.
func (r *Room) HasEveryoneGuessed() bool {
	return r.TotalPlayers > 1 && r.TotalGuesses >= r.TotalPlayers-1
}

// ClearTurn forgets the active word and drawer.
func (r *Room) ClearTurn() {
	r.Drawer = ""
	r.CurrentWord = ""
	r.WordChoices = r.WordChoices[:0]
	r.Turn = nil
}
