// Package claude scores symptom text against a fixed label set by asking a
// Claude model for a probability per label.
package claude

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"gopkg.in/yaml.v3"

	"github.com/linnemanlabs/carepath/internal/triage"
)

const defaultMaxTokens = 2048

// Classifier implements triage.Classifier using the Anthropic SDK.
type Classifier struct {
	client anthropic.Client
	model  string
	labels []string
	system string
}

// New creates a classifier over labels. Extra request options (base URL,
// retries) are passed to the SDK client.
func New(apiKey, model string, labels []string, opts ...option.RequestOption) (*Classifier, error) {
	if apiKey == "" {
		return nil, errors.New("claude: api key is required")
	}
	if len(labels) == 0 {
		return nil, errors.New("claude: label set is empty")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Classifier{
		client: anthropic.NewClient(opts...),
		model:  model,
		labels: append([]string(nil), labels...),
		system: systemPrompt(labels),
	}, nil
}

// LoadLabels reads a YAML list of condition labels.
func LoadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	var labels []string
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	out := labels[:0]
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("labels: file lists no labels")
	}
	return out, nil
}

func systemPrompt(labels []string) string {
	var b strings.Builder
	b.WriteString("You score patient symptom descriptions against a fixed list of conditions.\n")
	b.WriteString("Reply with a single JSON object mapping each condition name, exactly as written, ")
	b.WriteString("to a probability between 0 and 1. The probabilities should sum to 1. ")
	b.WriteString("Do not add any other text.\n\nConditions:\n")
	for _, l := range labels {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// Classify implements triage.Classifier.
func (c *Classifier) Classify(ctx context.Context, text string) ([]triage.Prediction, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   defaultMaxTokens,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: c.system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude api: %w", err)
	}
	return c.fromSDKResponse(msg)
}

// fromSDKResponse extracts the label scores from the model's text reply.
// Unknown labels are dropped and missing labels score 0.
func (c *Classifier) fromSDKResponse(msg *anthropic.Message) ([]triage.Prediction, error) {
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	raw := text.String()
	start, end := strings.IndexByte(raw, '{'), strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("claude reply has no JSON object (stop reason %s)", msg.StopReason)
	}

	var scores map[string]float64
	if err := json.Unmarshal([]byte(raw[start:end+1]), &scores); err != nil {
		return nil, fmt.Errorf("parse claude reply: %w", err)
	}

	// match labels case-insensitively; the model sometimes changes case
	byLower := make(map[string]float64, len(scores))
	for k, v := range scores {
		byLower[strings.ToLower(strings.TrimSpace(k))] = v
	}

	preds := make([]triage.Prediction, len(c.labels))
	var matched int
	for i, label := range c.labels {
		p, ok := byLower[strings.ToLower(label)]
		if ok {
			matched++
		}
		preds[i] = triage.Prediction{Label: label, Probability: p}
	}
	if matched == 0 {
		return nil, errors.New("claude reply scored none of the known labels")
	}
	return preds, nil
}
