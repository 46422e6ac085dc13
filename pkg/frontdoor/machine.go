package frontdoor

// Mode is the delivery mode of a watcher
type Mode string

const (
	ModeStreaming    Mode = "streaming"
	ModeReconnecting Mode = "reconnecting"
	ModePolling      Mode = "polling"
	ModeDegraded     Mode = "degraded"
	ModeTerminal     Mode = "terminal"
)

// Trigger is an input of the mode machine
type Trigger int

const (
	// StreamOpened: a push subscription was established
	StreamOpened Trigger = iota
	// StreamDelivered: the current subscription advanced the view
	StreamDelivered
	// StreamFailed: opening or reading the push subscription failed
	StreamFailed
	// Stalled: nothing was applied within the inactivity window
	Stalled
	// PollSucceeded: a poll returned an event
	PollSucceeded
	// PollFailed: a poll failed
	PollFailed
	// TerminalApplied: a completed or failed event was applied
	TerminalApplied
)

func (t Trigger) String() string {
	switch t {
	case StreamOpened:
		return "stream_opened"
	case StreamDelivered:
		return "stream_delivered"
	case StreamFailed:
		return "stream_failed"
	case Stalled:
		return "stalled"
	case PollSucceeded:
		return "poll_succeeded"
	case PollFailed:
		return "poll_failed"
	case TerminalApplied:
		return "terminal_applied"
	}
	return "unknown"
}

// Machine decides the delivery mode. It performs no I/O.
type Machine struct {
	mode                 Mode
	reconnectAttempts    int
	pollFailures         int
	maxReconnects        int
	pollFailureThreshold int

	// probation is set while a reopened stream has not delivered anything
	// new; its failure counts as a failed reconnect
	probation bool
}

// NewMachine creates a machine in streaming mode. Failing to reconnect
// maxReconnects times in a row falls back to polling; a reopened stream
// that fails before delivering counts as a failed reconnect.
// pollFailureThreshold consecutive poll failures degrade delivery.
func NewMachine(maxReconnects, pollFailureThreshold int) *Machine {
	return &Machine{
		mode:                 ModeStreaming,
		maxReconnects:        max(maxReconnects, 1),
		pollFailureThreshold: max(pollFailureThreshold, 1),
	}
}

// Mode returns the current mode
func (m *Machine) Mode() Mode {
	return m.mode
}

// PollFailures returns the consecutive poll failure count
func (m *Machine) PollFailures() int {
	return m.pollFailures
}

// Fire applies trigger and returns the resulting mode
func (m *Machine) Fire(trigger Trigger) Mode {
	if m.mode == ModeTerminal {
		return m.mode
	}
	if trigger == TerminalApplied {
		m.mode = ModeTerminal
		return m.mode
	}

	switch m.mode {
	case ModeStreaming:
		switch trigger {
		case StreamDelivered:
			m.probation = false
			m.reconnectAttempts = 0
		case StreamFailed, Stalled:
			m.mode = ModeReconnecting
			if m.probation {
				m.probation = false
				m.failReconnect()
			} else {
				m.reconnectAttempts = 0
			}
		}

	case ModeReconnecting:
		switch trigger {
		case StreamOpened:
			m.probation = true
			m.mode = ModeStreaming
		case StreamFailed:
			m.failReconnect()
		}

	case ModePolling, ModeDegraded:
		switch trigger {
		case PollSucceeded:
			m.pollFailures = 0
			m.mode = ModePolling
		case PollFailed:
			m.pollFailures++
			if m.pollFailures >= m.pollFailureThreshold {
				m.mode = ModeDegraded
			}
		case Stalled:
			m.reconnectAttempts = 0
			m.mode = ModeReconnecting
		}
	}

	return m.mode
}

func (m *Machine) failReconnect() {
	m.reconnectAttempts++
	if m.reconnectAttempts >= m.maxReconnects {
		m.pollFailures = 0
		m.mode = ModePolling
	}
}
