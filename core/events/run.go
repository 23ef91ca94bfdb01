package events

import "time"

// Run statuses.
const (
	RunStarted  = "started"
	RunFinished = "finished"
	RunFailed   = "failed"
)

// RunEvent is published when a solve starts and when it ends.
type RunEvent struct {
	RunID  string
	Status string
	Err    error
	Time   time.Time
}
