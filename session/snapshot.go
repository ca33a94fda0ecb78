package session

import (
	"github.com/jinzhu/copier"

	"github.com/nprole/flagmatch/game"
)

// Snapshot is a read-only copy of the session for rendering. Game and
// Results are deep copies; the presentation layer can hold them across
// repaints without racing the machine.
type Snapshot struct {
	Conn  ConnState
	Phase Phase

	Game    *game.Data
	Results *game.Results

	QueueStatus string
	InQueue     bool

	Selected      string
	HasSelected   bool
	CanAnswer     bool
	TimeRemaining int

	ErrorMessage string
}

// Snapshot captures the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Conn:          m.conn,
		Phase:         m.phase,
		QueueStatus:   m.queueStatus,
		InQueue:       m.inQueue,
		Selected:      m.selected,
		HasSelected:   m.hasSelected,
		CanAnswer:     m.canAnswer,
		TimeRemaining: m.remaining,
		ErrorMessage:  m.errMessage,
	}

	if m.game != nil {
		var data game.Data
		_ = copier.CopyWithOption(&data, m.game, copier.Option{DeepCopy: true})
		snap.Game = &data
	}
	if m.result != nil {
		var results game.Results
		_ = copier.CopyWithOption(&results, m.result, copier.Option{DeepCopy: true})
		snap.Results = &results
	}

	return snap
}
