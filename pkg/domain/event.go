package domain

// ProgressEvent is the immutable record published after a step transition.
// StepIndex lets consumers order and deduplicate deliveries.
type ProgressEvent struct {
	SessionID string  `json:"session_id"`
	StepIndex int     `json:"step_index"`
	Status    string  `json:"status"`
	Progress  int     `json:"progress"`
	Message   string  `json:"message"`
	Completed bool    `json:"completed"`
	Error     *string `json:"error"`
}

// Terminal reports whether no further events follow this one
func (e ProgressEvent) Terminal() bool {
	return e.Completed || e.Error != nil
}

// Failed reports whether the event carries a workflow failure
func (e ProgressEvent) Failed() bool {
	return e.Error != nil
}

// ErrorMessage returns the failure text or an empty string
func (e ProgressEvent) ErrorMessage() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}

// InitialEvent is the placeholder view before anything has been observed
func InitialEvent(sessionID string) ProgressEvent {
	return ProgressEvent{
		SessionID: sessionID,
		StepIndex: -1,
		Status:    StepNameStarting,
		Message:   "Waiting for session to start...",
	}
}
