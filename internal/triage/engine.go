package triage

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultTopN is the number of candidates returned when a query sets none.
	DefaultTopN = 3

	// MinTextLength is the minimum trimmed length of a symptom description.
	MinTextLength = 3
)

// Engine composes severity, specialty and reliability assessment into a
// Result. It is pure: it holds only read-only tables and never calls the
// classifier itself, so one Engine serves concurrent requests.
type Engine struct {
	tables     *Tables
	disclaimer string
	now        func() time.Time
}

// NewEngine creates an engine over the given tables. A nil tables value
// selects DefaultTables.
func NewEngine(tables *Tables) *Engine {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Engine{
		tables:     tables,
		disclaimer: Disclaimer(tables.emergencyNumber()),
		now:        time.Now,
	}
}

// Tables returns the engine's keyword tables. Callers must not modify them.
func (e *Engine) Tables() *Tables { return e.tables }

// Disclaimer returns the safety notice attached to results.
func (e *Engine) Disclaimer() string { return e.disclaimer }

// Disclaimer renders the safety notice for the given emergency number.
func Disclaimer(emergencyNumber string) string {
	return fmt.Sprintf(`IMPORTANT DISCLAIMER:
This symptom checker is NOT a substitute for professional medical advice,
diagnosis, or treatment. Always seek the advice of your physician or other
qualified health provider with any questions about a medical condition.

If you think you may have a medical emergency, call %s or go to the nearest
emergency room immediately.`, emergencyNumber)
}

// ValidateText rejects symptom descriptions shorter than MinTextLength
// characters once surrounding whitespace is removed.
func ValidateText(raw string) error {
	if utf8.RuneCountInString(strings.TrimSpace(raw)) < MinTextLength {
		return &ValidationError{
			Field:   "symptoms",
			Message: fmt.Sprintf("Please provide a detailed description of your symptoms (at least %d characters)", MinTextLength),
		}
	}
	return nil
}

// Build assembles the Result for rawText from raw classifier output. The
// output is ranked with Rank and capped at topN (DefaultTopN when topN <= 0).
// Only the top candidate feeds the severity assessment.
func (e *Engine) Build(rawText string, output []Prediction, topN int, info ModelInfo) (*Result, error) {
	if err := ValidateText(rawText); err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	ranked, err := Rank(output, topN)
	if err != nil {
		return nil, &ClassifierError{Err: err}
	}

	candidates := make([]Candidate, 0, len(ranked))
	for _, p := range ranked {
		reliability, followup := AssessReliability(p.Probability)
		candidates = append(candidates, Candidate{
			Condition:            p.Label,
			Confidence:           p.Probability,
			ConfidencePercentage: fmt.Sprintf("%.1f%%", p.Probability*100),
			Specialty:            e.tables.RouteSpecialty(p.Label),
			Reliability:          reliability,
			NeedsFollowup:        followup,
		})
	}

	top := candidates[0]
	return &Result{
		Timestamp:         e.now(),
		UserInput:         rawText,
		EmergencySeverity: e.tables.AssessSeverity(top.Condition, rawText, top.Confidence),
		Predictions:       candidates,
		Disclaimer:        e.disclaimer,
		ModelInfo:         info.withDefaults(),
	}, nil
}
