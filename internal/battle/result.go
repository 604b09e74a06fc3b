package battle

// Outcome is how a battle ended for the player.
type Outcome int

const (
	OutcomeVictory Outcome = iota
	OutcomeDefeat
)

// String returns the outcome name.
func (o Outcome) String() string {
	if o == OutcomeDefeat {
		return "Defeat"
	}
	return "Victory"
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is reported once when one side has no units left.
type Result struct {
	BattleID        string  `json:"battleId"`
	ContextID       string  `json:"contextId,omitempty"`
	Outcome         Outcome `json:"outcome"`
	PlayerUnitsLost int     `json:"playerUnitsLost"`
	EnemyUnitsLost  int     `json:"enemyUnitsLost"`
	Rounds          int     `json:"rounds"`
}

// ResultConsumer receives the battle result. It is called at most once per
// battle.
type ResultConsumer interface {
	OnBattleResult(Result)
}

// ResultFunc adapts a function to ResultConsumer.
type ResultFunc func(Result)

// OnBattleResult calls f(r).
func (f ResultFunc) OnBattleResult(r Result) { f(r) }

// ResultChan is a one-shot result channel. Create it with NewResultChan.
type ResultChan chan Result

// NewResultChan returns a channel buffered for exactly one result.
func NewResultChan() ResultChan {
	return make(ResultChan, 1)
}

// OnBattleResult delivers r without blocking; extra results are dropped.
func (c ResultChan) OnBattleResult(r Result) {
	select {
	case c <- r:
	default:
	}
}
