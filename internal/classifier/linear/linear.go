// Package linear scores symptom text with an exported TF-IDF + logistic
// regression model. The artifact is plain JSON so the service never needs the
// training runtime.
package linear

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/linnemanlabs/carepath/internal/triage"
)

// Artifact is the exported model: a fitted vectorizer vocabulary plus one
// coefficient row per class.
type Artifact struct {
	Classes    []string       `json:"classes"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	NgramMax   int            `json:"ngram_max"`
	StopWords  []string       `json:"stop_words"`
	Coef       [][]float64    `json:"coef"`
	Intercept  []float64      `json:"intercept"`
}

// Metadata is the training summary stored next to the artifact.
type Metadata struct {
	TestAccuracy *float64 `json:"test_accuracy"`
	TrainingDate string   `json:"training_date"`
}

// tokens of two or more word characters
var tokenRE = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Classifier is an in-process triage.Classifier. It is read-only after
// construction and safe for concurrent use.
type Classifier struct {
	a         *Artifact
	stopWords map[string]struct{}
	info      triage.ModelInfo
}

// New validates a and returns a classifier over it.
func New(a *Artifact, info triage.ModelInfo) (*Classifier, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	stop := make(map[string]struct{}, len(a.StopWords))
	for _, w := range a.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Classifier{a: a, stopWords: stop, info: info}, nil
}

// Load reads the artifact at modelPath and the metadata at metadataPath.
// Missing metadata is not an error; the model info then reads "Unknown".
func Load(modelPath, metadataPath string) (*Classifier, error) {
	data, err := os.ReadFile(modelPath) //nolint:gosec // G304: path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	a, err := ParseArtifact(data)
	if err != nil {
		return nil, err
	}

	var info triage.ModelInfo
	if metadataPath != "" {
		meta, err := os.ReadFile(metadataPath) //nolint:gosec // G304: path comes from operator config
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read metadata: %w", err)
		default:
			if info, err = ParseMetadata(meta); err != nil {
				return nil, err
			}
		}
	}
	return New(a, info)
}

// ParseArtifact decodes a JSON model artifact.
func ParseArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	return &a, nil
}

// ParseMetadata decodes training metadata into model info.
func ParseMetadata(data []byte) (triage.ModelInfo, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return triage.ModelInfo{}, fmt.Errorf("parse metadata: %w", err)
	}
	var info triage.ModelInfo
	if m.TestAccuracy != nil {
		info.Accuracy = *m.TestAccuracy
	}
	info.TrainingDate = m.TrainingDate
	return info, nil
}

func (a *Artifact) validate() error {
	n := len(a.Classes)
	if n == 0 {
		return errors.New("model: no classes")
	}
	if len(a.IDF) == 0 {
		return errors.New("model: empty idf")
	}
	if len(a.Coef) != n {
		return fmt.Errorf("model: %d coefficient rows for %d classes", len(a.Coef), n)
	}
	if len(a.Intercept) != n {
		return fmt.Errorf("model: %d intercepts for %d classes", len(a.Intercept), n)
	}
	for i, row := range a.Coef {
		if len(row) != len(a.IDF) {
			return fmt.Errorf("model: coefficient row %d has %d features, want %d", i, len(row), len(a.IDF))
		}
	}
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(a.IDF) {
			return fmt.Errorf("model: vocabulary term %q index %d out of range", term, idx)
		}
	}
	if a.NgramMax < 1 {
		a.NgramMax = 1
	}
	return nil
}

// Classes returns the model's label set in training order.
func (c *Classifier) Classes() []string {
	return append([]string(nil), c.a.Classes...)
}

// ModelInfo implements triage.ModelInfoProvider.
func (c *Classifier) ModelInfo() triage.ModelInfo { return c.info }

// Classify returns one probability per class, in class order.
func (c *Classifier) Classify(ctx context.Context, text string) ([]triage.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x := c.vectorize(text)
	scores := make([]float64, len(c.a.Classes))
	for k := range scores {
		s := c.a.Intercept[k]
		row := c.a.Coef[k]
		for idx, v := range x {
			s += row[idx] * v
		}
		scores[k] = s
	}

	probs := softmax(scores)
	out := make([]triage.Prediction, len(probs))
	for k, p := range probs {
		out[k] = triage.Prediction{Label: c.a.Classes[k], Probability: p}
	}
	return out, nil
}

// vectorize returns the L2-normalised tf-idf vector of text as a sparse map.
func (c *Classifier) vectorize(text string) map[int]float64 {
	var words []string
	for _, w := range tokenRE.FindAllString(strings.ToLower(text), -1) {
		if _, stop := c.stopWords[w]; !stop {
			words = append(words, w)
		}
	}

	x := make(map[int]float64)
	for n := 1; n <= c.a.NgramMax; n++ {
		for i := 0; i+n <= len(words); i++ {
			if idx, ok := c.a.Vocabulary[strings.Join(words[i:i+n], " ")]; ok {
				x[idx]++
			}
		}
	}

	var norm float64
	for idx, tf := range x {
		v := tf * c.a.IDF[idx]
		x[idx] = v
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range x {
			x[idx] /= norm
		}
	}
	return x
}

func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, s)
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
