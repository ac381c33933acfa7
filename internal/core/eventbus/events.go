// Package eventbus provides a typed publish/subscribe event bus that reports
// coordinator activity to the rest of the program.
//
// Dispatch is synchronous: Publish runs every subscriber before returning,
// on the caller's goroutine. Coordinators publish from the UI update loop, so
// subscribers must not block.
package eventbus

// Event names a kind of event.
type Event string

// Keep list sorted A-Z.
const (
	EventBatchCommitted     Event = "batch.committed"
	EventBatchCompleted     Event = "batch.completed"
	EventDataReloaded       Event = "data.reloaded"
	EventDiagnosticReported Event = "diagnostic.reported"
)

// BatchCommittedPayload is emitted when a batch has been submitted to a surface.
type BatchCommittedPayload struct {
	Owner    string
	BatchID  uint64
	Ops      []string
	Animated bool
	Implicit bool
}

// BatchCompletedPayload is emitted when the surface reports a batch finished.
type BatchCompletedPayload struct {
	Owner    string
	BatchID  uint64
	Finished bool
}

// DataReloadedPayload is emitted after a full reload.
type DataReloadedPayload struct {
	Owner string
	Shape []int
}

// DiagnosticReportedPayload is emitted when a coordinator rejects a call as a
// programming error.
type DiagnosticReportedPayload struct {
	Owner string
	Op    string
	Err   error
}
