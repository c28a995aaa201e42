package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal"
)

// =============================================================================
// EVENT ROUTING
// =============================================================================

// HandleEvent decodes one inbound frame and routes it. Failures are
// reported to the sender as an error event; they never close the
// connection.
func (e *Engine) HandleEvent(connID string, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("player", connID).Interface("panic", r).Msg("event handler crashed")
			e.reportError(connID, fmt.Errorf("%v", r))
		}
	}()

	var msg internal.Message[json.RawMessage]
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Debug().Err(err).Str("player", connID).Msg("failed to parse event")
		e.reportError(connID, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	log.Trace().Str("player", connID).Str("event", msg.Type).Msg("received event")

	// Blank chat lines are dropped without telling anyone.
	if err := e.dispatch(connID, msg); err != nil && !errors.Is(err, ErrEmptyGuess) {
		log.Debug().Err(err).Str("player", connID).Str("event", msg.Type).Msg("event rejected")
		e.reportError(connID, err)
	}
}

func (e *Engine) dispatch(connID string, msg internal.Message[json.RawMessage]) error {
	switch msg.Type {
	case internal.EventNewPrivateRoom:
		var identity internal.Identity
		if err := decode(msg.Data, &identity); err != nil {
			return err
		}
		_, err := e.NewPrivateRoom(connID, identity)
		return err

	case internal.EventJoinRoom:
		var data internal.JoinRoomData
		if err := decode(msg.Data, &data); err != nil {
			return err
		}
		if data.Id == "" {
			return fmt.Errorf("missing room id: %w", ErrBadRequest)
		}
		return e.JoinRoom(connID, data.Id, data.Player)

	case internal.EventSettingsUpdate:
		var data internal.SettingsData
		if err := decode(msg.Data, &data); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
		return e.UpdateSettings(connID, data)

	case internal.EventDrawing:
		return e.Drawing(connID, msg.Data)

	case internal.EventStartGame:
		return e.StartGame(connID)

	case internal.EventGetPlayers:
		return e.GetPlayers(connID)

	case internal.EventMessage:
		var data internal.ChatData
		if err := decode(msg.Data, &data); err != nil {
			return err
		}
		return e.HandleMessage(connID, data.Message)

	case internal.EventChooseWord:
		var data internal.ChooseWordData
		if err := decode(msg.Data, &data); err != nil {
			return err
		}
		return e.ChooseWord(connID, data.Word)

	default:
		return fmt.Errorf("unknown event %q: %w", msg.Type, ErrBadRequest)
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("missing data: %w", ErrBadRequest)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

func (e *Engine) reportError(connID string, err error) {
	msg := err.Error()
	if errors.Is(err, ErrBadRequest) {
		msg = ErrBadRequest.Error()
	}
	e.send(connID, internal.EventError, internal.ErrorData{Code: errorCode(err), Message: msg})
}
