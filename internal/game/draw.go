package game

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal"
)

// =============================================================================
// DRAWING SYSTEM
// =============================================================================

// Drawing relays stroke data verbatim to everyone else in the room.
func (e *Engine) Drawing(connID string, strokes json.RawMessage) error {
	room, err := e.registry.RoomOf(connID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	e.broadcastToRoomExcept(room, internal.EventDrawing, strokes, connID)
	return nil
}

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

// Gateway delivers events to connected clients. Send must only queue the
// message: it is called with the room lock held so that each room's
// events leave in the order its state changed.
type Gateway interface {
	Send(connID string, msg internal.Message[any]) error
}

func (e *Engine) send(connID, eventType string, data any) {
	if err := e.gateway.Send(connID, internal.Message[any]{Type: eventType, Data: data}); err != nil {
		log.Debug().Err(err).Str("player", connID).Str("event", eventType).Msg("send failed")
	}
}

// broadcastToRoom sends to every member. Callers hold room.Mu.
func (e *Engine) broadcastToRoom(room *internal.Room, eventType string, data any) {
	e.broadcastToRoomExcept(room, eventType, data, "")
}

// broadcastToRoomExcept sends to every member but exclude. Callers hold
// room.Mu.
func (e *Engine) broadcastToRoomExcept(room *internal.Room, eventType string, data any, exclude string) {
	msg := internal.Message[any]{Type: eventType, Data: data}
	sent := 0
	for _, id := range room.Order {
		if id == exclude {
			continue
		}
		if err := e.gateway.Send(id, msg); err != nil {
			log.Debug().Err(err).Str("room", room.Id).Str("player", id).Str("event", eventType).Msg("broadcast failed")
			continue
		}
		sent++
	}
	log.Trace().Str("room", room.Id).Str("event", eventType).Int("sent", sent).Msg("broadcast")
}
