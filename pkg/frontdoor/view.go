package frontdoor

import (
	"sync"

	"github.com/aescanero/debatehub/pkg/domain"
	"go.uber.org/zap"
)

// View is the observer-side state of one session. It only moves forward.
type View struct {
	mu      sync.RWMutex
	last    domain.ProgressEvent
	applied bool
	dropped int
	logger  *zap.Logger
}

// NewView creates an empty view
func NewView(logger *zap.Logger) *View {
	return &View{logger: logger}
}

// Apply applies event unless its step index is lower than the last applied
// one. Exact duplicates and events arriving after a terminal event leave
// the view unchanged. Apply reports whether the view changed.
func (v *View) Apply(event domain.ProgressEvent) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.applied {
		if v.last.Terminal() || sameEvent(event, v.last) {
			return false
		}
		if event.StepIndex < v.last.StepIndex {
			v.dropped++
			v.logger.Debug("dropped out-of-order progress event",
				zap.String("session_id", event.SessionID),
				zap.Int("step_index", event.StepIndex),
				zap.Int("last_step_index", v.last.StepIndex))
			return false
		}
	}

	v.last = event
	v.applied = true
	return true
}

// Last returns the last applied event
func (v *View) Last() (domain.ProgressEvent, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.last, v.applied
}

// LastStepIndex returns the last applied step index, -1 before any event
func (v *View) LastStepIndex() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.applied {
		return -1
	}
	return v.last.StepIndex
}

// Terminal reports whether a terminal event was applied
func (v *View) Terminal() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.applied && v.last.Terminal()
}

// Dropped returns the number of out-of-order events dropped
func (v *View) Dropped() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dropped
}

func sameEvent(a, b domain.ProgressEvent) bool {
	return a.SessionID == b.SessionID &&
		a.StepIndex == b.StepIndex &&
		a.Status == b.Status &&
		a.Progress == b.Progress &&
		a.Message == b.Message &&
		a.Completed == b.Completed &&
		a.ErrorMessage() == b.ErrorMessage()
}
