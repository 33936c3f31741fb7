package triage

import "testing"

func TestRouteSpecialty(t *testing.T) {
	t.Parallel()

	tables := DefaultTables()
	tests := []struct {
		condition string
		want      string
	}{
		{"Fungal skin infection", "Dermatology"},
		{"Heart attack", "Cardiology"},
		{"Chest infection", "Cardiology / Pulmonology"},
		{"Dengue fever", "General Physician"},
		// "infection" precedes "ear" in the rule list
		{"Ear infection", "Infectious Disease"},
		{"Bronchial Asthma", "Pulmonology"},
		{"Common Cold", DefaultSpecialty},
		{"", DefaultSpecialty},
	}
	for _, tt := range tests {
		if got := tables.RouteSpecialty(tt.condition); got != tt.want {
			t.Errorf("RouteSpecialty(%q) = %q, want %q", tt.condition, got, tt.want)
		}
	}
}

func TestAssessReliability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		confidence   float64
		want         Reliability
		wantFollowup bool
	}{
		{1, ReliabilityHigh, false},
		{0.75, ReliabilityHigh, false},
		{0.749999, ReliabilityModerate, true},
		{0.50, ReliabilityModerate, true},
		{0.4999, ReliabilityLow, true},
		{0, ReliabilityLow, true},
	}
	for _, tt := range tests {
		got, followup := AssessReliability(tt.confidence)
		if got != tt.want || followup != tt.wantFollowup {
			t.Errorf("AssessReliability(%v) = %q, %v; want %q, %v", tt.confidence, got, followup, tt.want, tt.wantFollowup)
		}
	}
}

func TestReliabilityDescription(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, r := range []Reliability{ReliabilityHigh, ReliabilityModerate, ReliabilityLow} {
		d := r.Description()
		if d == "" {
			t.Errorf("%s: empty description", r)
		}
		if seen[d] {
			t.Errorf("%s: duplicate description %q", r, d)
		}
		seen[d] = true
	}
}
