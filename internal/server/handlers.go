package server

import (
	"errors"
	"log"

	"grid-tactics/internal/battle"
	"grid-tactics/internal/protocol"
)

var (
	errMapNotFound    = errors.New("map not found")
	errNoBattle       = errors.New("no battle in progress")
	errUnknownMessage = errors.New("unknown message type")
)

// payloadError marks a payload that could not be decoded.
type payloadError struct{ err error }

func (e payloadError) Error() string { return "invalid payload: " + e.err.Error() }
func (e payloadError) Unwrap() error { return e.err }

// Handlers processes one session's incoming messages.
type Handlers struct {
	server  *Server
	session *Session
}

// Handle routes a message to the appropriate handler.
func (h *Handlers) Handle(msg *protocol.Message) {
	var err error

	switch msg.Type {
	case protocol.TypePing:
		h.session.client.SendPayload(protocol.TypePong, msg.ID, struct{}{})
	case protocol.TypeStartBattle:
		err = h.handleStartBattle(msg)
	case protocol.TypeLeaveBattle:
		err = h.handleLeaveBattle(msg)
	case protocol.TypeGetState:
		err = h.withBattle(msg, func(*battle.Battle) error { return nil })
	case protocol.TypeSelectUnit:
		err = h.handleSelectUnit(msg)
	case protocol.TypeSetMode:
		err = h.handleSetMode(msg)
	case protocol.TypeClickTile:
		err = h.handleClickTile(msg)
	case protocol.TypeCancelPlan:
		err = h.withBattle(msg, func(b *battle.Battle) error { return b.Planner().CancelPlan() })
	case protocol.TypeAutoPlan:
		err = h.withBattle(msg, battle.AutoPlan)
	case protocol.TypeNextPhase:
		err = h.withBattle(msg, func(b *battle.Battle) error { return b.NextPhase(h.session.ctx) })
	default:
		err = errUnknownMessage
	}

	if err != nil {
		h.sendError(msg.ID, err)
	}
}

func (h *Handlers) handleStartBattle(msg *protocol.Message) error {
	var payload protocol.StartBattlePayload
	if err := msg.ParsePayload(&payload); err != nil {
		return payloadError{err}
	}
	if err := h.session.startBattle(payload); err != nil {
		return err
	}
	h.sendState(msg.ID)
	return nil
}

func (h *Handlers) handleLeaveBattle(msg *protocol.Message) error {
	b := h.session.battle
	if b == nil {
		return errNoBattle
	}
	h.session.endBattle()
	h.session.client.SendPayload(protocol.TypeLeftBattle, msg.ID, protocol.LeftBattlePayload{BattleID: b.ID})
	return nil
}

func (h *Handlers) handleSelectUnit(msg *protocol.Message) error {
	var payload protocol.TilePayload
	if err := msg.ParsePayload(&payload); err != nil {
		return payloadError{err}
	}
	return h.withBattle(msg, func(b *battle.Battle) error {
		return b.Planner().SelectAt(battle.Coord{X: payload.X, Y: payload.Y})
	})
}

func (h *Handlers) handleSetMode(msg *protocol.Message) error {
	var payload protocol.SetModePayload
	if err := msg.ParsePayload(&payload); err != nil {
		return payloadError{err}
	}
	mode, err := battle.ParseMode(payload.Mode)
	if err != nil {
		return err
	}
	return h.withBattle(msg, func(b *battle.Battle) error {
		return b.Planner().SetMode(mode)
	})
}

func (h *Handlers) handleClickTile(msg *protocol.Message) error {
	var payload protocol.TilePayload
	if err := msg.ParsePayload(&payload); err != nil {
		return payloadError{err}
	}
	return h.withBattle(msg, func(b *battle.Battle) error {
		return b.Planner().Click(battle.Coord{X: payload.X, Y: payload.Y})
	})
}

// withBattle runs fn on the current battle and replies with the resulting
// state. A rejected command still gets the state after the error, since the
// planner may have dropped a half-built plan.
func (h *Handlers) withBattle(msg *protocol.Message, fn func(*battle.Battle) error) error {
	b := h.session.battle
	if b == nil {
		return errNoBattle
	}
	err := fn(b)
	if err != nil {
		h.sendError(msg.ID, err)
	}
	h.sendState(msg.ID)
	return nil
}

func (h *Handlers) sendState(msgID string) {
	s := h.session
	if s.battle == nil {
		return
	}
	s.client.SendPayload(protocol.TypeBattleState, msgID, statePayload(s.mapID, s.battle))
}

// sendError sends an error response.
func (h *Handlers) sendError(msgID string, err error) {
	code := errorCode(err)
	if code == protocol.ErrCodeInternalError {
		log.Printf("[Handlers] Internal error: %v", err)
	}
	h.session.client.SendPayload(protocol.TypeError, msgID, protocol.ErrorPayload{
		Code:    code,
		Message: err.Error(),
	})
}

// errorCode maps an error to the code reported to the client.
func errorCode(err error) protocol.ErrorCode {
	var perr payloadError
	switch {
	case errors.As(err, &perr):
		return protocol.ErrCodeInvalidPayload
	case errors.Is(err, errUnknownMessage):
		return protocol.ErrCodeUnknownMessage
	case errors.Is(err, errNoBattle):
		return protocol.ErrCodeNoBattle
	case errors.Is(err, errMapNotFound):
		return protocol.ErrCodeMapNotFound
	case errors.Is(err, battle.ErrNotPlanningPhase), errors.Is(err, battle.ErrBattleNotStarted):
		return protocol.ErrCodeNotPlanning
	case errors.Is(err, battle.ErrNoUnitSelected):
		return protocol.ErrCodeNoUnitSelected
	case errors.Is(err, battle.ErrOutOfRange), errors.Is(err, battle.ErrNotAdjacent):
		return protocol.ErrCodeOutOfRange
	case errors.Is(err, battle.ErrTileReserved), errors.Is(err, battle.ErrTileOccupied):
		return protocol.ErrCodeTileReserved
	case errors.Is(err, battle.ErrNoPath):
		return protocol.ErrCodeCannotReach
	case errors.Is(err, battle.ErrInvalidTarget), errors.Is(err, battle.ErrNotSelectable):
		return protocol.ErrCodeInvalidTarget
	case errors.Is(err, battle.ErrBattleOver), errors.Is(err, battle.ErrBattleClosed):
		return protocol.ErrCodeBattleOver
	case errors.Is(err, battle.ErrAlreadyActed), errors.Is(err, battle.ErrUnknownMode),
		errors.Is(err, battle.ErrNoTile):
		return protocol.ErrCodeInvalidAction
	}
	return protocol.ErrCodeInternalError
}

