package triage

// Reliability thresholds, inclusive on the lower bound.
const (
	HighReliabilityConfidence     = 0.75
	ModerateReliabilityConfidence = 0.50
)

// AssessReliability maps a classifier probability to a reliability tier and
// reports whether follow-up questions are needed.
func AssessReliability(confidence float64) (Reliability, bool) {
	switch {
	case confidence >= HighReliabilityConfidence:
		return ReliabilityHigh, false
	case confidence >= ModerateReliabilityConfidence:
		return ReliabilityModerate, true
	default:
		return ReliabilityLow, true
	}
}
