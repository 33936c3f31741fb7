package triage

import "strings"

// ContainsPhrase reports whether phrase occurs anywhere in text, ignoring case.
//
// Matching is plain substring containment with no tokenisation or word
// boundaries, so "ear" matches "heart" and "stroke" matches "heatstroke".
// Emergency detection relies on this: a spurious match over-triages, a
// missed phrase would under-triage. An empty phrase never matches.
func ContainsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(phrase))
}

// firstPhrase returns the first entry of phrases contained in any of texts.
// Phrase order decides the result, not position in the text.
func firstPhrase(phrases []string, texts ...string) (string, bool) {
	for _, p := range phrases {
		for _, t := range texts {
			if ContainsPhrase(t, p) {
				return p, true
			}
		}
	}
	return "", false
}
