package domain

// Severity classifies run findings.
type Severity string

// Finding severities; warnings flag data-quality conditions the run tolerated,
// log entries are informational.
const (
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Finding reports a non-fatal condition observed during a run, such as an
// unparseable container coordinate or an unmatched bundle.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	EntityID string   `json:"entity_id,omitempty"`
}

// RunCounts itemises a run's outcomes.
type RunCounts struct {
	Processed int `json:"processed"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Created   int `json:"created"`
	Existing  int `json:"existing"`
	Failed    int `json:"failed"`
}

// RunReport is the user-visible outcome of one run: overall success, itemised
// counts, findings, and per-item error strings. A single item-level failure
// never crashes the process; only inputs that make the whole run meaningless
// are fatal.
type RunReport struct {
	Success  bool      `json:"success"`
	Counts   RunCounts `json:"counts"`
	Findings []Finding `json:"findings,omitempty"`
	Errors   []string  `json:"errors,omitempty"`
}

// Warn records a warning-level finding.
func (r *RunReport) Warn(code, message, entityID string) {
	r.Findings = append(r.Findings, Finding{Severity: SeverityWarn, Code: code, Message: message, EntityID: entityID})
}

// Log records an informational finding.
func (r *RunReport) Log(code, message, entityID string) {
	r.Findings = append(r.Findings, Finding{Severity: SeverityLog, Code: code, Message: message, EntityID: entityID})
}

// Fail records a per-item error string and bumps the failed count.
func (r *RunReport) Fail(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Counts.Failed++
}

// Merge folds another report's findings, errors, and counts into r.
func (r *RunReport) Merge(other RunReport) {
	r.Findings = append(r.Findings, other.Findings...)
	r.Errors = append(r.Errors, other.Errors...)
	r.Counts.Processed += other.Counts.Processed
	r.Counts.Matched += other.Counts.Matched
	r.Counts.Unmatched += other.Counts.Unmatched
	r.Counts.Created += other.Counts.Created
	r.Counts.Existing += other.Counts.Existing
	r.Counts.Failed += other.Counts.Failed
}
