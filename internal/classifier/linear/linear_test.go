package linear

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linnemanlabs/carepath/internal/triage"
)

const testArtifact = `{
	"classes": ["Heart attack", "Fungal infection"],
	"vocabulary": {"chest": 0, "pain": 1, "chest pain": 2, "rash": 3},
	"idf": [1, 1, 1, 1],
	"ngram_max": 2,
	"stop_words": ["the", "and", "my"],
	"coef": [[1, 1, 2, 0], [0, 0, 0, 3]],
	"intercept": [0, 0]
}`

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	a, err := ParseArtifact([]byte(testArtifact))
	if err != nil {
		t.Fatalf("ParseArtifact: %v", err)
	}
	c, err := New(a, triage.ModelInfo{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func probOf(t *testing.T, preds []triage.Prediction, label string) float64 {
	t.Helper()
	for _, p := range preds {
		if p.Label == label {
			return p.Probability
		}
	}
	t.Fatalf("label %q missing from %+v", label, preds)
	return 0
}

func TestClassify(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	tests := []struct {
		text  string
		label string
		want  float64
	}{
		// x = [1,1,1,0]/sqrt(3); score = 4/sqrt(3)
		{"Chest pain", "Heart attack", 1 / (1 + math.Exp(-4/math.Sqrt(3)))},
		// stop words drop before n-grams, so "chest pain" still forms
		{"my chest and the pain", "Heart attack", 1 / (1 + math.Exp(-4/math.Sqrt(3)))},
		{"itchy rash", "Fungal infection", 1 / (1 + math.Exp(-3))},
		{"the and", "Heart attack", 0.5},
		{"", "Heart attack", 0.5},
	}
	for _, tt := range tests {
		preds, err := c.Classify(context.Background(), tt.text)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tt.text, err)
		}
		if len(preds) != 2 {
			t.Fatalf("Classify(%q) returned %d predictions", tt.text, len(preds))
		}
		if got := probOf(t, preds, tt.label); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Classify(%q)[%s] = %v, want %v", tt.text, tt.label, got, tt.want)
		}
		if sum := preds[0].Probability + preds[1].Probability; math.Abs(sum-1) > 1e-9 {
			t.Errorf("Classify(%q) probabilities sum to %v", tt.text, sum)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	a, _ := c.Classify(context.Background(), "chest pain with rash")
	b, _ := c.Classify(context.Background(), "chest pain with rash")
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("prediction %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestClassify_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClassifier(t).Classify(ctx, "chest pain"); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestNew_RejectsMalformedArtifact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a       Artifact
		wantErr string
	}{
		{"no classes", Artifact{IDF: []float64{1}}, "no classes"},
		{"no idf", Artifact{Classes: []string{"a"}}, "empty idf"},
		{"coef rows", Artifact{Classes: []string{"a", "b"}, IDF: []float64{1}, Coef: [][]float64{{1}}, Intercept: []float64{0, 0}}, "coefficient rows"},
		{"intercepts", Artifact{Classes: []string{"a"}, IDF: []float64{1}, Coef: [][]float64{{1}}}, "intercepts"},
		{"row width", Artifact{Classes: []string{"a"}, IDF: []float64{1, 1}, Coef: [][]float64{{1}}, Intercept: []float64{0}}, "features"},
		{"vocab index", Artifact{Classes: []string{"a"}, IDF: []float64{1}, Coef: [][]float64{{1}}, Intercept: []float64{0}, Vocabulary: map[string]int{"x": 4}}, "out of range"},
	}
	for _, tt := range tests {
		a := tt.a
		_, err := New(&a, triage.ModelInfo{})
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: err = %v, want substring %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	metaPath := filepath.Join(dir, "metadata.json")
	if err := os.WriteFile(modelPath, []byte(testArtifact), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(modelPath, metaPath)
	if err != nil {
		t.Fatalf("Load without metadata: %v", err)
	}
	if info := c.ModelInfo(); info.Accuracy != nil || info.TrainingDate != "" {
		t.Errorf("ModelInfo = %+v, want zero", info)
	}

	if err := os.WriteFile(metaPath, []byte(`{"test_accuracy": 0.87, "training_date": "2025-01-01"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err = Load(modelPath, metaPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if info := c.ModelInfo(); info.Accuracy != 0.87 || info.TrainingDate != "2025-01-01" {
		t.Errorf("ModelInfo = %+v", info)
	}
	if got := c.Classes(); len(got) != 2 || got[0] != "Heart attack" {
		t.Errorf("Classes = %v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json"), ""); err == nil {
		t.Error("expected error for missing model")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad, ""); err == nil {
		t.Error("expected error for malformed model")
	}

	good := filepath.Join(dir, "model.json")
	if err := os.WriteFile(good, []byte(testArtifact), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(good, bad); err == nil {
		t.Error("expected error for malformed metadata")
	}
}

func TestEngineIntegration(t *testing.T) {
	t.Parallel()

	svc := triage.NewService(newTestClassifier(t), nil, nil)
	r, err := svc.Predict(context.Background(), triage.Query{Text: "itchy rash on my arm"})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	top, _ := r.Top()
	if top.Condition != "Fungal infection" || top.Specialty != "Infectious Disease" {
		t.Errorf("top = %+v", top)
	}
	if r.ModelInfo.Accuracy != triage.Unknown {
		t.Errorf("Accuracy = %v, want Unknown", r.ModelInfo.Accuracy)
	}
}
