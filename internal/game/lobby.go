package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal"
	"github.com/scythe504/skribblr/internal/utils"
)

// =============================================================================
// ROOM REGISTRY
// =============================================================================

const roomIDLength = 15

// Registry owns every live Room and remembers which room each connection
// is in. Room state itself is guarded by the room's own mutex; the registry
// lock only covers the two maps and is never held together with a room lock.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*internal.Room
	sessions map[string]string

	newID func() string
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]*internal.Room),
		sessions: make(map[string]string),
		newID:    func() string { return utils.GenerateID(roomIDLength) },
		now:      time.Now,
	}
}

// CreateRoom registers a fresh room with host as its first member.
func (reg *Registry) CreateRoom(host internal.Identity, settings internal.Settings) (*internal.Room, error) {
	if host.Id == "" {
		return nil, fmt.Errorf("create room: %w", ErrNotInRoom)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	id := reg.newID()
	for attempts := 0; reg.rooms[id] != nil; attempts++ {
		if attempts > 16 {
			return nil, fmt.Errorf("create room: could not allocate a unique id")
		}
		id = reg.newID()
	}

	room := internal.NewRoom(id, settings)
	room.AddPlayer(internal.NewPlayer(host, reg.now()))

	reg.rooms[id] = room
	reg.sessions[host.Id] = id

	log.Info().Str("room", id).Str("player", host.Id).
		Int("rounds", settings.Rounds).Dur("round_duration", settings.RoundDuration).
		Msg("created room")
	return room, nil
}

func (reg *Registry) Get(roomID string) (*internal.Room, error) {
	reg.mu.RLock()
	room, ok := reg.rooms[roomID]
	reg.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("room %q: %w", roomID, ErrRoomNotFound)
	}
	return room, nil
}

// RoomOf returns the room a connection currently belongs to.
func (reg *Registry) RoomOf(connID string) (*internal.Room, error) {
	reg.mu.RLock()
	roomID, ok := reg.sessions[connID]
	reg.mu.RUnlock()
	if !ok {
		return nil, ErrNotInRoom
	}
	return reg.Get(roomID)
}

// Join adds a player with score 0 and returns the roster without the
// joiner.
func (reg *Registry) Join(roomID string, player internal.Identity) ([]internal.Identity, error) {
	room, err := reg.Get(roomID)
	if err != nil {
		return nil, err
	}

	room.Mu.Lock()
	if room.Closed {
		room.Mu.Unlock()
		return nil, fmt.Errorf("room %q: %w", roomID, ErrRoomNotFound)
	}
	if room.GetPlayer(player.Id) == nil && room.TotalPlayers >= internal.MaxPlayersPerRoom {
		room.Mu.Unlock()
		return nil, fmt.Errorf("room %q: %w", roomID, ErrRoomFull)
	}
	room.AddPlayer(internal.NewPlayer(player, reg.now()))
	others := room.Identities(player.Id)
	total := room.TotalPlayers
	room.Mu.Unlock()

	reg.mu.Lock()
	reg.sessions[player.Id] = roomID
	reg.mu.Unlock()

	log.Info().Str("room", roomID).Str("player", player.Id).Int("total_players", total).Msg("player joined")
	return others, nil
}

// Leave removes a connection from its room. When the room becomes empty it
// is removed from the registry and empty is true.
func (reg *Registry) Leave(connID string) (room *internal.Room, player *internal.Player, empty bool, err error) {
	reg.mu.Lock()
	roomID, ok := reg.sessions[connID]
	delete(reg.sessions, connID)
	room = reg.rooms[roomID]
	reg.mu.Unlock()
	if !ok || room == nil {
		return nil, nil, false, ErrNotInRoom
	}

	room.Mu.Lock()
	player, _ = room.RemovePlayer(connID)
	if room.TotalPlayers == 0 {
		room.Closed = true
		empty = true
	}
	room.Mu.Unlock()

	if empty {
		reg.Remove(roomID)
	}
	return room, player, empty, nil
}

// Remove deletes all state for a room and cancels its context so a running
// game stops.
func (reg *Registry) Remove(roomID string) {
	reg.mu.Lock()
	room, ok := reg.rooms[roomID]
	delete(reg.rooms, roomID)
	for connID, id := range reg.sessions {
		if id == roomID {
			delete(reg.sessions, connID)
		}
	}
	reg.mu.Unlock()
	if !ok {
		return
	}

	room.Mu.Lock()
	room.Closed = true
	if room.Turn != nil {
		room.Turn.Resolve(internal.TurnRoomClosed)
	}
	room.Mu.Unlock()
	room.Cancel()

	log.Info().Str("room", roomID).Msg("removed room")
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
