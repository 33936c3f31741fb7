package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linnemanlabs/carepath/internal/triage"
)

func init() {
	color.NoColor = true
}

const testArtifact = `{
	"classes": ["Heart attack", "Fungal infection", "Common Cold"],
	"vocabulary": {"chest": 0, "pain": 1, "itching": 2, "sneezing": 3},
	"idf": [1.0, 1.0, 1.0, 1.0],
	"ngram_max": 1,
	"coef": [[3.0, 3.0, -1.0, -1.0], [-1.0, -1.0, 3.0, -1.0], [-1.0, -1.0, -1.0, 3.0]],
	"intercept": [0.0, 0.0, 0.0]
}`

// fixture writes a model, its metadata and a config file, and returns flags
// pointing at them.
func fixture(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	model := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(model, []byte(testArtifact), 0o600))
	meta := filepath.Join(dir, "meta.json")
	require.NoError(t, os.WriteFile(meta, []byte(`{"test_accuracy": 0.97, "training_date": "2025-01-15"}`), 0o600))
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("emergency-number: \"108\"\n"), 0o600))
	return []string{"--config", cfg, "--model-path", model, "--metadata-path", meta}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAssess_PrintsResult(t *testing.T) {
	t.Parallel()

	args := append([]string{"assess"}, fixture(t)...)
	out, _, err := run(t, append(args, "severe chest pain since morning")...)
	require.NoError(t, err)

	assert.Contains(t, out, "ESI 1")
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "emergency services (108)")
	assert.Contains(t, out, "Heart attack")
	assert.Contains(t, out, "Cardiology")
	assert.Contains(t, out, "DISCLAIMER")
}

func TestAssess_JSON(t *testing.T) {
	t.Parallel()

	args := append([]string{"assess", "--json", "--top-n", "2"}, fixture(t)...)
	out, _, err := run(t, append(args, "constant itching on my arms")...)
	require.NoError(t, err)

	var r triage.Result
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.Len(t, r.Predictions, 2)
	assert.Equal(t, "Fungal infection", r.Predictions[0].Condition)
	assert.Equal(t, "Infectious Disease", r.Predictions[0].Specialty)
	assert.Equal(t, "constant itching on my arms", r.UserInput)
	assert.InDelta(t, 0.97, r.ModelInfo.Accuracy, 1e-9)
	assert.Equal(t, "2025-01-15", r.ModelInfo.TrainingDate)
}

func TestAssess_ValidationError(t *testing.T) {
	t.Parallel()

	args := append([]string{"assess"}, fixture(t)...)
	_, stderr, err := run(t, append(args, "ab")...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAssessmentFailed))

	var ve *triage.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Contains(t, stderr, "at least 3 characters")
}

func TestAssess_EmergencyNumberFlag(t *testing.T) {
	t.Parallel()

	args := append([]string{"assess", "--emergency-number", "911"}, fixture(t)...)
	out, _, err := run(t, append(args, "crushing chest pain")...)
	require.NoError(t, err)
	assert.Contains(t, out, "emergency services (911)")
	assert.NotContains(t, out, "(108)")
}

func TestAssess_MissingModel(t *testing.T) {
	t.Parallel()

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o600))
	_, _, err := run(t, "assess", "--config", cfg, "--model-path", "/nonexistent/model.json", "headache and nausea")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load model")
}

func TestAssess_RequiresArgs(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "assess")
	require.Error(t, err)
}

func TestSpecialty(t *testing.T) {
	t.Parallel()

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o600))

	tests := []struct {
		condition string
		want      string
	}{
		{"Fungal infection", "Infectious Disease"},
		{"Heart attack", "Cardiology"},
		{"Drug Reaction", "General Physician"},
	}
	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			t.Parallel()
			out, _, err := run(t, "specialty", "--config", cfg, tt.condition)
			require.NoError(t, err)
			assert.Equal(t, tt.condition+": "+tt.want+"\n", out)
		})
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("tables-path: /etc/carepath/tables.yaml\n"), 0o600))

	out, stderr, err := run(t, "config", "show", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "tables-path: /etc/carepath/tables.yaml")
	assert.Contains(t, stderr, cfg)
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "specialty", "--config", "/nonexistent/config.yaml", "Migraine")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:")
	assert.Contains(t, out, "go:")
}

func TestPrintResult_Warning(t *testing.T) {
	t.Parallel()

	warning := "Low prediction confidence."
	var buf bytes.Buffer
	printResult(&buf, &triage.Result{
		EmergencySeverity: triage.Assessment{
			ESILevel: 4, Severity: "LESS URGENT", Action: "See a doctor", WaitTime: "1-2 hours",
			Warning: &warning, ColorCode: triage.ColorGreen,
		},
		Predictions: []triage.Candidate{
			{Condition: "Migraine", ConfidencePercentage: "45.0%", Specialty: "Neurology", Reliability: triage.ReliabilityModerate},
		},
		Disclaimer: "IMPORTANT DISCLAIMER:",
	})

	out := buf.String()
	assert.Contains(t, out, "ESI 4  LESS URGENT")
	assert.Contains(t, out, "Warning:   Low prediction confidence.")
	assert.Contains(t, out, "Additional questions recommended")
	assert.NotContains(t, out, "assessment ")
}

func TestPrintError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printError(&buf, &triage.ErrorResponse{Error: "Prediction failed: classifier unavailable", Disclaimer: "IMPORTANT DISCLAIMER:"})
	assert.Contains(t, buf.String(), "Error: Prediction failed")
	assert.Contains(t, buf.String(), "IMPORTANT DISCLAIMER:")
}

func TestModelPush_RequiresDatabaseURL(t *testing.T) {
	t.Parallel()

	args := append([]string{"model", "push"}, fixture(t)...)
	_, _, err := run(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database-url")
}

func TestModelPush_RejectsBadArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	model := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(model, []byte(`{"classes": []}`), 0o600))
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o600))

	_, _, err := run(t, "model", "push", "--config", cfg,
		"--database-url", "postgres://localhost:1/none", "--model-path", model)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load model")
}
