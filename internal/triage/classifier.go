package triage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// Prediction is one (label, probability) pair produced by a classifier.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Classifier is the interface for any condition classifier backend. Given a
// non-empty text it returns one probability per label of a fixed label set,
// in any order. Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Prediction, error)
}

// ModelInfoProvider is implemented by classifiers that know their training
// metadata.
type ModelInfoProvider interface {
	ModelInfo() ModelInfo
}

// ErrNoPredictions is returned when a classifier produced an empty label set.
var ErrNoPredictions = errors.New("classifier returned no predictions")

// Rank validates classifier output and returns its topN entries ordered by
// descending probability. Ties keep the classifier's label order. The input
// slice is not modified.
func Rank(preds []Prediction, topN int) ([]Prediction, error) {
	if len(preds) == 0 {
		return nil, ErrNoPredictions
	}
	for i, p := range preds {
		if math.IsNaN(p.Probability) || p.Probability < 0 || p.Probability > 1 {
			return nil, fmt.Errorf("prediction %d (%q): probability %v outside [0,1]", i, p.Label, p.Probability)
		}
		if p.Label == "" {
			return nil, fmt.Errorf("prediction %d: empty label", i)
		}
	}

	ranked := make([]Prediction, len(preds))
	copy(ranked, preds)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})

	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked, nil
}
