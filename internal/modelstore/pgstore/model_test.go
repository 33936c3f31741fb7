package pgstore

import "testing"

func TestModelClassifier(t *testing.T) {
	t.Parallel()

	m := &Model{
		Artifact: []byte(`{"classes":["a"],"vocabulary":{"x":0},"idf":[1],"coef":[[1]],"intercept":[0]}`),
		Metadata: []byte("null"),
	}
	c, err := m.Classifier()
	if err != nil {
		t.Fatalf("Classifier: %v", err)
	}
	if info := c.ModelInfo(); info.Accuracy != nil {
		t.Errorf("Accuracy = %v, want nil", info.Accuracy)
	}

	m.Metadata = []byte(`{"test_accuracy":0.5}`)
	c, err = m.Classifier()
	if err != nil {
		t.Fatalf("Classifier: %v", err)
	}
	if info := c.ModelInfo(); info.Accuracy != 0.5 {
		t.Errorf("Accuracy = %v, want 0.5", info.Accuracy)
	}

	m.Artifact = []byte(`{"classes":[]}`)
	if _, err := m.Classifier(); err == nil {
		t.Error("expected error for invalid artifact")
	}
}
