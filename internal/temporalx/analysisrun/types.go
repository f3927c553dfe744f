package analysisrun

const (
	WorkflowName    = "session_analysis"
	ActivityAnalyze = "session_analysis_analyze"

	// ErrTypeSessionNotFound marks non-retryable activity failures for
	// sessions that have no stored traces.
	ErrTypeSessionNotFound = "session_not_found"
	ErrTypeInvalidSession  = "invalid_session_id"
)

// Request lists the stored sessions to analyze in one run.
type Request struct {
	SessionIDs  []string `json:"session_ids"`
	MaxParallel int      `json:"max_parallel,omitempty"`
}

// SessionOutcome is the per-session summary kept in workflow history. The
// full report stays in the store.
type SessionOutcome struct {
	SessionID  string  `json:"session_id"`
	Level      string  `json:"level,omitempty"`
	Semaphore  string  `json:"semaphore,omitempty"`
	Trend      string  `json:"trend,omitempty"`
	Risks      int     `json:"risks"`
	Unresolved int     `json:"unresolved"`
	MaxScore   float64 `json:"max_score,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type Summary struct {
	Outcomes []SessionOutcome `json:"outcomes"`
	Failed   int              `json:"failed"`
}
