// Package workers implements the worker pool that executes workflow steps.
//
// The worker pool manages a fixed number of goroutines that:
//   - Take steps from a shared queue in submission order
//   - Call the provider executor for each step
//   - Return the produced content or a typed step error to the session runner
//
// The pool bounds concurrent provider calls across all sessions. The health
// monitor tracks worker status, records metrics and feeds the gRPC health
// service.
package workers
