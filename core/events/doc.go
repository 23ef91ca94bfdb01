// Package events defines the solver events emitted on the event bus.
//
// Available event types:
//   - RunEvent: a run started, finished or failed
//   - IterationEvent: bounds after one Benders iteration
//   - ScenarioEvent: outcome of one scenario subproblem
package events
