package battle

// EventType identifies what happened on the battlefield.
type EventType string

const (
	EventBattleStarted EventType = "battle_started"
	EventPhaseChanged  EventType = "phase_changed"
	EventRoundStarted  EventType = "round_started"
	EventUnitMoved     EventType = "unit_moved"
	EventUnitAttacked  EventType = "unit_attacked"
	EventUnitDefended  EventType = "unit_defended"
	EventUnitDied      EventType = "unit_died"
	EventBattleEnded   EventType = "battle_ended"
)

// Event is a presentation-level record of a battle step.
type Event struct {
	Type     EventType `json:"type"`
	Round    int       `json:"round"`
	Phase    string    `json:"phase"`
	UnitID   string    `json:"unitId,omitempty"`
	TargetID string    `json:"targetId,omitempty"`
	From     *Coord    `json:"from,omitempty"`
	To       *Coord    `json:"to,omitempty"`
	Damage   int       `json:"damage,omitempty"`
	Health   int       `json:"health,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// EventSink receives battle events as they happen.
type EventSink interface {
	Emit(Event)
}

// EventFunc adapts a function to EventSink.
type EventFunc func(Event)

// Emit calls f(ev).
func (f EventFunc) Emit(ev Event) { f(ev) }

// MultiSink fans one event out to several sinks.
type MultiSink []EventSink

// Emit forwards ev to every sink.
func (m MultiSink) Emit(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ev)
		}
	}
}

type discardSink struct{}

func (discardSink) Emit(Event) {}
