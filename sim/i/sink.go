package i

import "context"

// SnapshotSink receives encoded per-tick snapshots for display. Sinks are
// write-only and best-effort from the simulation's perspective: a slow or
// unavailable sink loses snapshots, never simulation progress.
type SnapshotSink interface {
	Publish(ctx context.Context, payload []byte) error
}
