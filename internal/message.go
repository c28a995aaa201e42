package internal

import "encoding/json"

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data,omitempty"`
}

// Inbound event types.
const (
	EventNewPrivateRoom = "newPrivateRoom"
	EventJoinRoom       = "joinRoom"
	EventSettingsUpdate = "settingsUpdate"
	EventDrawing        = "drawing"
	EventStartGame      = "startGame"
	EventGetPlayers     = "getPlayers"
	EventMessage        = "message"
	EventChooseWord     = "chooseWord"
)

// Outbound-only event types.
const (
	EventOtherPlayers  = "otherPlayers"
	EventDisableCanvas = "disableCanvas"
	EventChoosing      = "choosing"
	EventHideWord      = "hideWord"
	EventWordChosen    = "wordChosen"
	EventClearCanvas   = "clearCanvas"
	EventStartTimer    = "startTimer"
	EventCorrectGuess  = "correctGuess"
	EventCloseGuess    = "closeGuess"
	EventUpdateScore   = "updateScore"
	EventDisconnection = "disconnection"
	EventTurnEnd       = "turnEnd"
	EventGameOver      = "gameOver"
	EventError         = "error"
)

type NewRoomData struct {
	GameID string `json:"gameID"`
}

type JoinRoomData struct {
	Id     string   `json:"id"`
	Player Identity `json:"player"`
}

// SettingsData is the wire form of a settings update. The legacy client
// sends numbers as strings, so both are accepted.
type SettingsData struct {
	Rounds json.Number `json:"rounds"`
	Time   json.Number `json:"time"`
}

type ChatData struct {
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
	Id      string `json:"id,omitempty"`
}

type ChooseWordData struct {
	Word string `json:"word"`
}

type ChoosingData struct {
	Name string `json:"name"`
}

type MaskedWordData struct {
	Word string `json:"word"`
}

type TimerData struct {
	Time int64 `json:"time"`
}

type ScoreUpdateData struct {
	PlayerID    string `json:"playerID"`
	Score       int    `json:"score"`
	DrawerID    string `json:"drawerID"`
	DrawerScore int    `json:"drawerScore"`
}

type TurnEndData struct {
	Word   string        `json:"word"`
	Reason TurnEndReason `json:"reason"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
