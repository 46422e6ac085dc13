package frontdoor

import "testing"

func TestMachine_Transitions(t *testing.T) {
	tests := []struct {
		name     string
		triggers []Trigger
		want     Mode
	}{
		{"starts streaming", nil, ModeStreaming},
		{"stream failure reconnects", []Trigger{StreamFailed}, ModeReconnecting},
		{"stall reconnects", []Trigger{Stalled}, ModeReconnecting},
		{"reconnect succeeds", []Trigger{StreamFailed, StreamOpened}, ModeStreaming},
		{"reconnects exhausted fall back to polling", []Trigger{StreamFailed, StreamFailed, StreamFailed}, ModePolling},
		{"four poll failures keep polling",
			[]Trigger{StreamFailed, StreamFailed, StreamFailed, PollFailed, PollFailed, PollFailed, PollFailed}, ModePolling},
		{"five poll failures degrade",
			[]Trigger{StreamFailed, StreamFailed, StreamFailed, PollFailed, PollFailed, PollFailed, PollFailed, PollFailed}, ModeDegraded},
		{"success resets the failure count",
			[]Trigger{StreamFailed, StreamFailed, StreamFailed, PollFailed, PollFailed, PollFailed, PollFailed, PollSucceeded, PollFailed}, ModePolling},
		{"degraded recovers on success",
			[]Trigger{StreamFailed, StreamFailed, StreamFailed, PollFailed, PollFailed, PollFailed, PollFailed, PollFailed, PollSucceeded}, ModePolling},
		{"stalled polling tries streaming again", []Trigger{StreamFailed, StreamFailed, StreamFailed, Stalled}, ModeReconnecting},
		{"reopened streams failing before delivery fall back to polling",
			[]Trigger{StreamFailed, StreamOpened, StreamFailed, StreamOpened, StreamFailed}, ModePolling},
		{"reopened stream stalling before delivery counts as a failure",
			[]Trigger{StreamFailed, StreamOpened, Stalled, StreamOpened, Stalled}, ModePolling},
		{"delivery clears the reconnect count",
			[]Trigger{StreamFailed, StreamOpened, StreamFailed, StreamOpened, StreamDelivered, StreamFailed, StreamOpened, StreamFailed}, ModeReconnecting},
		{"terminal is absorbing", []Trigger{TerminalApplied, StreamFailed, PollFailed, Stalled}, ModeTerminal},
		{"terminal from polling", []Trigger{StreamFailed, StreamFailed, StreamFailed, TerminalApplied}, ModeTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(2, 5)
			for _, trig := range tt.triggers {
				m.Fire(trig)
			}
			if m.Mode() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, m.Mode())
			}
		})
	}
}

func TestMachine_PollFailuresResetOnFallback(t *testing.T) {
	m := NewMachine(1, 2)
	m.Fire(StreamFailed)
	m.Fire(StreamFailed)
	m.Fire(PollFailed)
	m.Fire(Stalled)
	m.Fire(StreamFailed)
	if m.Mode() != ModePolling || m.PollFailures() != 0 {
		t.Fatalf("expected fresh polling, got %s with %d failures", m.Mode(), m.PollFailures())
	}
	m.Fire(PollFailed)
	if m.Mode() != ModePolling {
		t.Errorf("expected polling after one failure, got %s", m.Mode())
	}
}
