// Package slack posts escalation notices for severe assessments to Slack via
// incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/carepath/internal/triage"
)

const (
	maxCandidatesLen = 2000
	httpTimeout      = 10 * time.Second
)

// Notifier implements triage.Notifier against a Slack webhook. Notices carry
// the assessment, never the patient's own description.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     log.Logger
}

// New creates a new Slack notifier. If webhookURL is empty, Notify is a no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:     logger,
	}
}

// Notify posts an escalation notice for result to the configured webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Notify(ctx context.Context, id string, result *triage.Result) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(buildMessage(id, result))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	n.logger.Info(ctx, "escalation notice sent", "assessment_id", id, "esi_level", result.EmergencySeverity.ESILevel)
	return nil
}

func buildMessage(id string, r *triage.Result) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(r),
			{"type": "divider"},
			fieldsBlock(r),
			{"type": "divider"},
			candidatesBlock(r),
			{"type": "divider"},
			contextBlock(id, r),
		},
	}
}

func headerBlock(r *triage.Result) map[string]any {
	sev := r.EmergencySeverity
	text := fmt.Sprintf("%s ESI %d: %s", colorEmoji(sev.ColorCode), sev.ESILevel, sev.Severity)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(r *triage.Result) map[string]any {
	sev := r.EmergencySeverity
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Action:* %s", sev.Action),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Wait time:* %s", sev.WaitTime),
		},
	}

	if top, ok := r.Top(); ok {
		fields = append(fields,
			map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Top condition:* %s (%s)", top.Condition, top.ConfidencePercentage),
			},
			map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Specialty:* %s", top.Specialty),
			},
		)
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func candidatesBlock(r *triage.Result) map[string]any {
	var b strings.Builder
	for i, c := range r.Predictions {
		fmt.Fprintf(&b, "%d. %s, %s, %s reliability\n", i+1, c.Condition, c.ConfidencePercentage, c.Reliability)
	}
	text := truncate(strings.TrimSpace(b.String()), maxCandidatesLen)
	if text == "" {
		text = "_No candidates._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Candidates*\n\n%s", text),
		},
	}
}

func contextBlock(id string, r *triage.Result) map[string]any {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("carepath • assessment %s • %s", id, ts.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func colorEmoji(c triage.ColorCode) string {
	switch c {
	case triage.ColorRed:
		return "\U0001f534" // red circle
	case triage.ColorOrange:
		return "\U0001f7e0" // orange circle
	case triage.ColorYellow:
		return "\U0001f7e1" // yellow circle
	case triage.ColorGreen:
		return "\U0001f7e2" // green circle
	default:
		return "\U0001f535" // blue circle
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
