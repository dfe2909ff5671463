// Package jsonenc provides the JSON snapshot codec for the display sinks.
package jsonenc

import (
	"encoding/json"

	"github.com/guilhemriera/Parallel-Ants-Project/sim"
)

var _ sim.SnapshotEncoder = &JSON{}

// JSON encodes snapshots as JSON documents.
type JSON struct{}

// MarshalSnapshot implements sim.SnapshotEncoder.
func (e *JSON) MarshalSnapshot(s *sim.Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot implements sim.SnapshotEncoder.
func (e *JSON) UnmarshalSnapshot(payload []byte) (*sim.Snapshot, error) {
	var s sim.Snapshot
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
