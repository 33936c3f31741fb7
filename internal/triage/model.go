package triage

import "time"

// Reliability is the trust label derived from a classifier probability.
type Reliability string

const (
	// ReliabilityHigh means the prediction needs no follow-up questions.
	ReliabilityHigh Reliability = "High"

	// ReliabilityModerate means the prediction is uncertain.
	ReliabilityModerate Reliability = "Moderate"

	// ReliabilityLow means the condition cannot be determined reliably.
	ReliabilityLow Reliability = "Low"
)

// Description returns a short human-readable explanation of the tier.
func (r Reliability) Description() string {
	switch r {
	case ReliabilityHigh:
		return "Prediction has high confidence"
	case ReliabilityModerate:
		return "Prediction is uncertain. Additional questions recommended."
	default:
		return "Condition cannot be determined reliably. Please consult a healthcare professional."
	}
}

// ColorCode is the display colour attached to an ESI level.
type ColorCode string

const (
	ColorRed    ColorCode = "red"
	ColorOrange ColorCode = "orange"
	ColorYellow ColorCode = "yellow"
	ColorGreen  ColorCode = "green"
	ColorBlue   ColorCode = "blue"
)

// Query is a single symptom description submitted for triage.
type Query struct {
	Text string
	TopN int
}

// Candidate is one ranked classifier prediction enriched with a specialty
// and a reliability tier.
type Candidate struct {
	Condition            string      `json:"condition"`
	Confidence           float64     `json:"confidence"`
	ConfidencePercentage string      `json:"confidence_percentage"`
	Specialty            string      `json:"specialty"`
	Reliability          Reliability `json:"reliability"`
	NeedsFollowup        bool        `json:"needs_followup_questions"`
}

// Assessment is the emergency severity computed from the top candidate.
type Assessment struct {
	ESILevel  int       `json:"esi_level"`
	Severity  string    `json:"severity"`
	Action    string    `json:"action"`
	WaitTime  string    `json:"wait_time"`
	Warning   *string   `json:"warning"`
	ColorCode ColorCode `json:"color_code"`

	// MatchedKeyword is the table phrase that selected tiers 1-3.
	MatchedKeyword string `json:"-"`
}

// ModelInfo is classifier metadata passed through to callers.
// Accuracy is a number when known and the string "Unknown" otherwise.
type ModelInfo struct {
	Accuracy     any    `json:"accuracy"`
	TrainingDate string `json:"training_date"`
}

// Unknown is the placeholder for absent model metadata.
const Unknown = "Unknown"

func (m ModelInfo) withDefaults() ModelInfo {
	if m.Accuracy == nil {
		m.Accuracy = Unknown
	}
	if s, ok := m.Accuracy.(string); ok && s == "" {
		m.Accuracy = Unknown
	}
	if m.TrainingDate == "" {
		m.TrainingDate = Unknown
	}
	return m
}

// Result is the outcome of a triage run.
type Result struct {
	// ID identifies the assessment in logs, headers and escalation notices.
	ID string `json:"-"`

	Timestamp         time.Time   `json:"timestamp"`
	UserInput         string      `json:"user_input"`
	EmergencySeverity Assessment  `json:"emergency_severity"`
	Predictions       []Candidate `json:"predictions"`
	Disclaimer        string      `json:"disclaimer"`
	ModelInfo         ModelInfo   `json:"model_info"`
}

// Top returns the highest-ranked candidate.
func (r *Result) Top() (Candidate, bool) {
	if r == nil || len(r.Predictions) == 0 {
		return Candidate{}, false
	}
	return r.Predictions[0], true
}
