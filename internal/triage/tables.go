package triage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadTables reads keyword tables from a YAML file.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes and normalises YAML keyword tables. Phrases are
// trimmed and lowercased; list order is preserved.
func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse tables: %w", err)
	}

	var errs []error
	var err error
	if t.Critical, err = normalizePhrases("critical", t.Critical); err != nil {
		errs = append(errs, err)
	}
	if t.Emergent, err = normalizePhrases("emergent", t.Emergent); err != nil {
		errs = append(errs, err)
	}
	if t.Urgent, err = normalizePhrases("urgent", t.Urgent); err != nil {
		errs = append(errs, err)
	}

	if len(t.Specialties) == 0 {
		errs = append(errs, errors.New("specialties: table is empty"))
	}
	for i := range t.Specialties {
		r := &t.Specialties[i]
		r.Keyword = strings.ToLower(strings.TrimSpace(r.Keyword))
		r.Specialty = strings.TrimSpace(r.Specialty)
		if r.Keyword == "" || r.Specialty == "" {
			errs = append(errs, fmt.Errorf("specialties[%d]: keyword and specialty are required", i))
		}
	}

	t.EmergencyNumber = strings.TrimSpace(t.EmergencyNumber)
	if t.EmergencyNumber == "" {
		t.EmergencyNumber = DefaultEmergencyNumber
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &t, nil
}

func normalizePhrases(name string, in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%s: table is empty", name)
	}
	out := make([]string, 0, len(in))
	for i, p := range in {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			return nil, fmt.Errorf("%s[%d]: empty phrase", name, i)
		}
		out = append(out, p)
	}
	return out, nil
}
