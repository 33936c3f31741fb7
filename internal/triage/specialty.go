package triage

// DefaultSpecialty is returned when no specialty keyword matches.
const DefaultSpecialty = "General Physician"

// RouteSpecialty returns the specialty of the first rule whose keyword is
// contained in the condition label, or DefaultSpecialty.
func (t *Tables) RouteSpecialty(condition string) string {
	for _, r := range t.Specialties {
		if ContainsPhrase(condition, r.Keyword) {
			return r.Specialty
		}
	}
	return DefaultSpecialty
}
