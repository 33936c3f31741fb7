package triage

import "fmt"

// Emergency Severity Index levels, 1 is most critical.
const (
	ESICritical   = 1
	ESIEmergent   = 2
	ESIUrgent     = 3
	ESISemiUrgent = 4
	ESINonUrgent  = 5
)

// SemiUrgentConfidence is the minimum top-candidate confidence for ESI 4
// when no keyword matched.
const SemiUrgentConfidence = 0.60

// AssessSeverity places a query on the 5-level ESI scale. Tiers are checked
// in order and the first match wins:
//
//  1. a critical phrase in the raw text
//  2. an emergent phrase in the raw text
//  3. an urgent phrase in the raw text or the condition label
//  4. confidence >= SemiUrgentConfidence
//  5. anything else
func (t *Tables) AssessSeverity(condition, rawText string, confidence float64) Assessment {
	if kw, ok := firstPhrase(t.Critical, rawText); ok {
		a := t.critical()
		a.MatchedKeyword = kw
		return a
	}
	if kw, ok := firstPhrase(t.Emergent, rawText); ok {
		a := emergent()
		a.MatchedKeyword = kw
		return a
	}
	// labels count only once the more severe tiers are ruled out
	if kw, ok := firstPhrase(t.Urgent, rawText, condition); ok {
		a := urgent()
		a.MatchedKeyword = kw
		return a
	}
	if confidence >= SemiUrgentConfidence {
		return semiUrgent()
	}
	return nonUrgent()
}

func (t *Tables) emergencyNumber() string {
	if t.EmergencyNumber == "" {
		return DefaultEmergencyNumber
	}
	return t.EmergencyNumber
}

func (t *Tables) critical() Assessment {
	n := t.emergencyNumber()
	return Assessment{
		ESILevel: ESICritical,
		Severity: "CRITICAL - LIFE THREATENING",
		Action:   fmt.Sprintf("Call emergency services (%s) immediately", n),
		WaitTime: "0 minutes - Immediate intervention required",
		Warning: warning(fmt.Sprintf(
			"EMERGENCY: This is a medical emergency. Call %s or go to the nearest emergency room NOW. Do not wait.", n)),
		ColorCode: ColorRed,
	}
}

func emergent() Assessment {
	return Assessment{
		ESILevel:  ESIEmergent,
		Severity:  "EMERGENT - High Risk",
		Action:    "Go to Emergency Department immediately",
		WaitTime:  "<15 minutes",
		Warning:   warning("Urgent medical attention required within 15 minutes. Go to the ER now."),
		ColorCode: ColorOrange,
	}
}

func urgent() Assessment {
	return Assessment{
		ESILevel:  ESIUrgent,
		Severity:  "URGENT",
		Action:    "Visit Urgent Care or Emergency Department within 1-2 hours",
		WaitTime:  "1-2 hours",
		Warning:   warning("Medical evaluation needed within 1-2 hours."),
		ColorCode: ColorYellow,
	}
}

func semiUrgent() Assessment {
	return Assessment{
		ESILevel:  ESISemiUrgent,
		Severity:  "Semi-Urgent",
		Action:    "Schedule appointment with doctor within 24-48 hours",
		WaitTime:  "1-2 days",
		ColorCode: ColorGreen,
	}
}

func nonUrgent() Assessment {
	return Assessment{
		ESILevel:  ESINonUrgent,
		Severity:  "Non-Urgent",
		Action:    "Monitor symptoms and consult primary care if persists",
		WaitTime:  "3-7 days as needed",
		ColorCode: ColorBlue,
	}
}

// warning returns a fresh pointer so no two assessments share one.
func warning(s string) *string {
	return &s
}
