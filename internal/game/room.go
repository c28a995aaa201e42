package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal"
)

// =============================================================================
// ROOM MANAGEMENT
// =============================================================================

// WordSampler supplies candidate words for the drawer.
type WordSampler interface {
	Sample(k int) []string
}

// ResultRecorder persists the standings of finished games.
type ResultRecorder interface {
	RecordGame(ctx context.Context, results internal.FinalResults) error
}

type Options struct {
	// Settings for newly created rooms.
	Defaults internal.Settings
	// How long the drawer may take to pick a word before the first
	// candidate is picked for them. Zero waits forever.
	WordChoiceTimeout time.Duration
	// Optional.
	Results ResultRecorder
	Now     func() time.Time
}

// Engine reacts to player events. It owns the Registry handed to it and
// runs one scheduler goroutine per game in progress.
type Engine struct {
	registry      *Registry
	gateway       Gateway
	words         WordSampler
	results       ResultRecorder
	defaults      internal.Settings
	choiceTimeout time.Duration
	now           func() time.Time

	games sync.WaitGroup
}

func NewEngine(registry *Registry, gateway Gateway, words WordSampler, opts Options) *Engine {
	if opts.Defaults.Rounds <= 0 || opts.Defaults.RoundDuration <= 0 {
		opts.Defaults = internal.DefaultSettings()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	registry.now = opts.Now
	return &Engine{
		registry:      registry,
		gateway:       gateway,
		words:         words,
		results:       opts.Results,
		defaults:      opts.Defaults,
		choiceTimeout: opts.WordChoiceTimeout,
		now:           opts.Now,
	}
}

func (e *Engine) Registry() *Registry {
	return e.registry
}

// Wait blocks until every running game has returned.
func (e *Engine) Wait() {
	e.games.Wait()
}

// NewPrivateRoom creates a room hosted by connID and replies with its id.
func (e *Engine) NewPrivateRoom(connID string, player internal.Identity) (string, error) {
	if _, err := e.registry.RoomOf(connID); err == nil {
		e.Disconnect(connID, "switched room")
	}

	player.Id = connID
	room, err := e.registry.CreateRoom(player, e.defaults)
	if err != nil {
		return "", err
	}

	e.send(connID, internal.EventNewPrivateRoom, internal.NewRoomData{GameID: room.Id})
	return room.Id, nil
}

// JoinRoom adds connID to an existing room, tells the others, and hands the
// joiner the roster and the room's current settings.
func (e *Engine) JoinRoom(connID, roomID string, player internal.Identity) error {
	if current, err := e.registry.RoomOf(connID); err == nil {
		if current.Id == roomID {
			return nil
		}
		e.Disconnect(connID, "switched room")
	}

	player.Id = connID
	others, err := e.registry.Join(roomID, player)
	if err != nil {
		return err
	}
	room, err := e.registry.Get(roomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	e.broadcastToRoomExcept(room, internal.EventJoinRoom, player, connID)
	e.send(connID, internal.EventOtherPlayers, others)
	e.send(connID, internal.EventSettingsUpdate, settingsData(room.Settings))
	return nil
}

// ParseSettings validates a settings update. Time is in seconds.
func ParseSettings(data internal.SettingsData) (internal.Settings, error) {
	rounds, err := strconv.Atoi(strings.TrimSpace(data.Rounds.String()))
	if err != nil {
		return internal.Settings{}, fmt.Errorf("rounds %q: %w", data.Rounds, ErrInvalidSettings)
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(data.Time.String()))
	if err != nil {
		return internal.Settings{}, fmt.Errorf("time %q: %w", data.Time, ErrInvalidSettings)
	}
	if rounds < internal.MinRounds || rounds > internal.MaxRounds {
		return internal.Settings{}, fmt.Errorf("rounds %d outside [%d, %d]: %w",
			rounds, internal.MinRounds, internal.MaxRounds, ErrInvalidSettings)
	}
	if seconds < internal.MinRoundSeconds || seconds > internal.MaxRoundSeconds {
		return internal.Settings{}, fmt.Errorf("time %ds outside [%d, %d]: %w",
			seconds, internal.MinRoundSeconds, internal.MaxRoundSeconds, ErrInvalidSettings)
	}
	return internal.Settings{
		Rounds:        rounds,
		RoundDuration: time.Duration(seconds) * time.Second,
	}, nil
}

// UpdateSettings replaces the room's settings while it is in the lobby.
// Rejected updates leave the previous settings in place.
func (e *Engine) UpdateSettings(connID string, data internal.SettingsData) error {
	settings, err := ParseSettings(data)
	if err != nil {
		return err
	}
	room, err := e.registry.RoomOf(connID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.InGame() {
		return ErrGameInProgress
	}
	room.Settings = settings
	log.Debug().Str("room", room.Id).Str("player", connID).
		Int("rounds", settings.Rounds).Dur("round_duration", settings.RoundDuration).
		Msg("settings updated")

	e.broadcastToRoomExcept(room, internal.EventSettingsUpdate, settingsData(settings), connID)
	return nil
}

// GetPlayers answers the whole room with the current roster.
func (e *Engine) GetPlayers(connID string) error {
	room, err := e.registry.RoomOf(connID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	e.broadcastToRoom(room, internal.EventGetPlayers, room.Snapshots())
	return nil
}

// Disconnect removes connID from its room. The room is removed once it is
// empty; otherwise the remaining players are told, and a turn that can no
// longer continue is ended.
func (e *Engine) Disconnect(connID, reason string) {
	room, player, empty, err := e.registry.Leave(connID)
	if err != nil {
		return
	}
	log.Info().Str("room", room.Id).Str("player", connID).Str("reason", reason).
		Bool("room_removed", empty).Msg("player left")
	if empty || player == nil {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	e.broadcastToRoom(room, internal.EventDisconnection, player.Identity)

	if !room.InGame() || room.Turn == nil {
		return
	}
	switch {
	case room.TotalPlayers < internal.MinPlayersToStart:
		room.Turn.Resolve(internal.TurnNotEnoughPlayers)
	case player.Id == room.Drawer:
		room.Turn.Resolve(internal.TurnDrawerLeft)
	case room.Phase == internal.PhaseDrawing && room.HasEveryoneGuessed():
		room.Turn.Resolve(internal.TurnEverybodyGuessed)
	}
}

type RoomSummary struct {
	Id          string                    `json:"id"`
	Phase       internal.GamePhase        `json:"phase"`
	Rounds      int                       `json:"rounds"`
	Time        int                       `json:"time"`
	RoundNumber int                       `json:"round_number"`
	Drawer      string                    `json:"drawer,omitempty"`
	Players     []internal.PlayerSnapshot `json:"players"`
}

func (e *Engine) RoomSummary(roomID string) (RoomSummary, error) {
	room, err := e.registry.Get(roomID)
	if err != nil {
		return RoomSummary{}, err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed {
		return RoomSummary{}, fmt.Errorf("room %q: %w", roomID, ErrRoomNotFound)
	}
	return RoomSummary{
		Id:          room.Id,
		Phase:       room.Phase,
		Rounds:      room.Settings.Rounds,
		Time:        room.Settings.Seconds(),
		RoundNumber: room.RoundNumber,
		Drawer:      room.Drawer,
		Players:     room.Snapshots(),
	}, nil
}

func settingsData(s internal.Settings) internal.SettingsData {
	return internal.SettingsData{
		Rounds: json.Number(strconv.Itoa(s.Rounds)),
		Time:   json.Number(strconv.Itoa(s.Seconds())),
	}
}
