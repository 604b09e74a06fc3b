package server

import (
	"grid-tactics/internal/battle"
	"grid-tactics/internal/protocol"
)

// statePayload snapshots a battle for the client.
func statePayload(mapID string, b *battle.Battle) protocol.BattleStatePayload {
	turns := b.Turns()
	p := b.Planner()

	state := protocol.BattleStatePayload{
		BattleID: b.ID,
		MapID:    mapID,
		Round:    turns.Round(),
		Phase:    turns.Phase().String(),
		Mode:     p.Mode().String(),
	}

	if u := p.Selected(); u != nil {
		state.SelectedID = u.ID
	}
	if t := p.PrepTile(); t != nil {
		tp := tilePayload(t)
		state.PrepTile = &tp
	}
	for _, t := range p.Highlighted() {
		state.Highlighted = append(state.Highlighted, tilePayload(t))
	}

	for _, t := range b.Grid().Tiles() {
		state.Tiles = append(state.Tiles, protocol.TileInfo{
			X:            t.Coord.X,
			Y:            t.Coord.Y,
			Elevation:    t.Elevation,
			PlayerZone:   t.PlayerDeployZone,
			EnemyZone:    t.EnemyDeployZone,
			Occupied:     t.Occupied(),
			TempReserved: t.TempReserved(),
			TurnReserved: t.TurnReserved(),
		})
	}

	for _, u := range append(b.Players(), b.Enemies()...) {
		state.Units = append(state.Units, unitInfo(u))
	}

	if r, ok := turns.Result(); ok {
		rp := resultPayload(r)
		state.Result = &rp
	}
	return state
}

func unitInfo(u *battle.Unit) protocol.UnitInfo {
	c := u.Coord()
	info := protocol.UnitInfo{
		ID:             u.ID,
		Name:           u.Name,
		Team:           u.Team.String(),
		Type:           u.Type,
		X:              c.X,
		Y:              c.Y,
		PosX:           u.Position.X,
		PosY:           u.Position.Y,
		Health:         u.Health,
		MaxHealth:      u.MaxHealth,
		Attack:         u.AttackPower,
		Defense:        u.DefensePower,
		ResourcePoints: u.ResourcePoints,
		PlannedAction:  u.PlannedAction.String(),
		Finished:       u.Finished,
	}
	for _, t := range u.PlannedPath {
		info.PlannedPath = append(info.PlannedPath, tilePayload(t))
	}
	if u.Target != nil {
		info.TargetID = u.Target.ID
	}
	return info
}

func tilePayload(t *battle.Tile) protocol.TilePayload {
	return protocol.TilePayload{X: t.Coord.X, Y: t.Coord.Y}
}

func coordPayload(c *battle.Coord) *protocol.TilePayload {
	if c == nil {
		return nil
	}
	return &protocol.TilePayload{X: c.X, Y: c.Y}
}

func eventPayload(ev battle.Event) protocol.BattleEventPayload {
	return protocol.BattleEventPayload{
		Type:     string(ev.Type),
		Round:    ev.Round,
		Phase:    ev.Phase,
		UnitID:   ev.UnitID,
		TargetID: ev.TargetID,
		From:     coordPayload(ev.From),
		To:       coordPayload(ev.To),
		Damage:   ev.Damage,
		Health:   ev.Health,
		Message:  ev.Message,
	}
}

func resultPayload(r battle.Result) protocol.ResultPayload {
	return protocol.ResultPayload{
		BattleID:        r.BattleID,
		ContextID:       r.ContextID,
		Outcome:         r.Outcome.String(),
		PlayerUnitsLost: r.PlayerUnitsLost,
		EnemyUnitsLost:  r.EnemyUnitsLost,
		Rounds:          r.Rounds,
	}
}
