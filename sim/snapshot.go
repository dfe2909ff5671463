package sim

import "github.com/guilhemriera/Parallel-Ants-Project/colony"

// AgentState is one worker's view of its ant shard at a given tick. Ant
// shards are private to their worker; the coordinator only aggregates them
// for display.
type AgentState struct {
	Worker     int          `json:"worker"`
	Positions  []colony.Pos `json:"positions"`
	Ages       []int32      `json:"ages"`
	Directions []int8       `json:"directions"`
	Carrying   []bool       `json:"carrying"`
}

// Snapshot is the per-tick display state assembled by the coordinator: the
// merged scent field plus every worker's most recently reported agent state.
// Individual worker states may lag the field tick; render staleness is
// acceptable, simulation correctness is not.
type Snapshot struct {
	Tick           int64        `json:"tick"`
	TotalDelivered int64        `json:"totalDelivered"`
	Rows           int          `json:"rows"`
	Cols           int          `json:"cols"`
	Field          []float64    `json:"field"` // ghost border included
	Agents         []AgentState `json:"agents"`
}

// SnapshotEncoder serializes snapshots for the display sinks.
type SnapshotEncoder interface {
	MarshalSnapshot(*Snapshot) ([]byte, error)
	UnmarshalSnapshot([]byte) (*Snapshot, error)
}
