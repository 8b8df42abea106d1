package ir

// Outcome values recorded for every journaled transition. A failure stores
// the error code in Code alongside OutcomeFailed.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Transition is one entry of the append-only transition journal. Failures
// are journaled too, so replay can prove the same inputs fail the same way.
type Transition struct {
	Seq           int64    `json:"seq"`        // Logical clock
	ID            string   `json:"id"`         // Content-addressed hash
	RequestID     string   `json:"request_id"` // Caller-visible correlation id
	Kind          string   `json:"kind"`
	Caller        string   `json:"caller"`
	Now           int64    `json:"now"` // Trusted timestamp, seconds
	Args          IRObject `json:"args"`
	Outcome       string   `json:"outcome"`
	Code          string   `json:"code,omitempty"`
	Message       string   `json:"message,omitempty"`
	Result        IRObject `json:"result"`
	Keys          []string `json:"keys"` // Records written, in write order
	EngineVersion string   `json:"engine_version"`
	IRVersion     string   `json:"ir_version"`
}

// OK reports whether the transition committed.
func (t Transition) OK() bool { return t.Outcome == OutcomeOK }
