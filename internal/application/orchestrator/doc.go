// Package orchestrator implements the session lifecycle of debates and
// business idea sessions.
//
// The orchestrator manager coordinates sessions by:
//   - Validating requests and resolving provider names
//   - Building the step plan of each workflow
//   - Running each plan step by step on its own goroutine
//   - Publishing a progress event after every completed step
//   - Retaining results and evicting expired sessions
//   - Cancelling sessions on request, on timeout or when abandoned
//
// Every session ends in exactly one terminal state: succeeded after the final
// step, or failed at the first step that returned an error.
package orchestrator
