package domain

// TranscriptEntry is the output of one executed step
type TranscriptEntry struct {
	Step     string `json:"step"`
	Role     string `json:"role,omitempty"`
	Provider string `json:"provider,omitempty"`
	Content  string `json:"content"`
}

// Result is the terminal output of a session. Exactly one of Debate and
// Business is set for a succeeded session.
type Result struct {
	SessionID       string            `json:"session_id"`
	Kind            WorkflowKind      `json:"kind"`
	Topic           string            `json:"topic"`
	Outcome         Outcome           `json:"outcome"`
	Error           string            `json:"error,omitempty"`
	FailedStep      string            `json:"failed_step,omitempty"`
	FailedStepIndex int               `json:"failed_step_index,omitempty"`
	Transcript      []TranscriptEntry `json:"transcript"`
	Debate          *DebateResult     `json:"debate,omitempty"`
	Business        *BusinessResult   `json:"business,omitempty"`
}

// DebateRound holds the two arguments of one round
type DebateRound struct {
	RoundNumber int    `json:"round_number"`
	ProArgument string `json:"pro_argument"`
	ConArgument string `json:"con_argument"`
}

// DebateResult is the assembled output of a debate
type DebateResult struct {
	RoleA   string        `json:"role_a"`
	RoleB   string        `json:"role_b"`
	Rounds  []DebateRound `json:"rounds"`
	Summary string        `json:"summary"`
}

// BusinessIdea is one generated idea with its critique and refinement
type BusinessIdea struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	TargetMarket string         `json:"target_market"`
	Monetization string         `json:"monetization"`
	Critique     map[string]any `json:"critique"`
	Refinement   string         `json:"refinement"`
	Score        float64        `json:"score"`
}

// BusinessResult is the assembled output of a business idea session
type BusinessResult struct {
	Ideas []BusinessIdea `json:"ideas"`
}
