// Package protocol defines the network message types for client-server communication.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the type of message.
type MessageType string

// Session message types
const (
	TypeStartBattle MessageType = "start_battle"
	TypeLeaveBattle MessageType = "leave_battle"
	TypeGetState    MessageType = "get_state"
)

// Planning message types
const (
	TypeSelectUnit MessageType = "select_unit"
	TypeSetMode    MessageType = "set_mode"
	TypeClickTile  MessageType = "click_tile"
	TypeCancelPlan MessageType = "cancel_plan"
	TypeNextPhase  MessageType = "next_phase"
	TypeAutoPlan   MessageType = "auto_plan"
)

// Battle flow message types
const (
	TypeLeftBattle   MessageType = "left_battle"
	TypeBattleState  MessageType = "battle_state"
	TypeBattleEvent  MessageType = "battle_event"
	TypeBattleResult MessageType = "battle_result"
	TypeUnitFrame    MessageType = "unit_frame"
)

// System message types
const (
	TypeWelcome MessageType = "welcome"
	TypeError   MessageType = "error"
	TypePing    MessageType = "ping"
	TypePong    MessageType = "pong"
)

// Message is the envelope for all messages.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMessage creates a new message with the given type and payload.
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   data,
	}, nil
}

// ParsePayload unmarshals the payload into the given type.
func (m *Message) ParsePayload(v interface{}) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

// ErrorCode represents an error type.
type ErrorCode string

const (
	ErrCodeInvalidAction  ErrorCode = "invalid_action"
	ErrCodeNotPlanning    ErrorCode = "not_planning_phase"
	ErrCodeNoUnitSelected ErrorCode = "no_unit_selected"
	ErrCodeOutOfRange     ErrorCode = "out_of_range"
	ErrCodeTileReserved   ErrorCode = "tile_reserved"
	ErrCodeCannotReach    ErrorCode = "cannot_reach"
	ErrCodeInvalidTarget  ErrorCode = "invalid_target"
	ErrCodeBattleOver     ErrorCode = "battle_over"
	ErrCodeNoBattle       ErrorCode = "no_battle"
	ErrCodeMapNotFound    ErrorCode = "map_not_found"
	ErrCodeUnknownMessage ErrorCode = "unknown_message"
	ErrCodeInvalidPayload ErrorCode = "invalid_payload"
	ErrCodeInternalError  ErrorCode = "internal_error"
)

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
