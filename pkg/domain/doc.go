// Package domain holds the value types shared by the orchestrator, the
// progress hub, the HTTP surfaces and the Front Door client.
//
// The central types are:
//   - StepPlan: the ordered step descriptors of one session, fixed at creation
//   - ProgressEvent: the immutable record published after every step transition
//   - SessionSnapshot: the atomically published view of one session
//   - Result: the terminal output of a workflow
package domain
