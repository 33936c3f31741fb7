// Package remote calls a model server over HTTP for class probabilities.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linnemanlabs/carepath/internal/triage"
)

// DefaultTimeout bounds one predict_proba round trip.
const DefaultTimeout = 10 * time.Second

const maxResponseBytes = 1 << 20

// Client is a triage.Classifier backed by POST {endpoint}/predict_proba.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a client for the model server at endpoint.
func New(endpoint string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Classes       []string  `json:"classes"`
	Probabilities []float64 `json:"probabilities"`
}

// Classify implements triage.Classifier.
func (c *Client) Classify(ctx context.Context, text string) ([]triage.Prediction, error) {
	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/predict_proba", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	return decodeResponse(respBody)
}

func decodeResponse(data []byte) ([]triage.Prediction, error) {
	var out predictResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(out.Classes) == 0 {
		return nil, errors.New("model server returned no classes")
	}
	if len(out.Classes) != len(out.Probabilities) {
		return nil, fmt.Errorf("model server returned %d classes and %d probabilities", len(out.Classes), len(out.Probabilities))
	}

	preds := make([]triage.Prediction, len(out.Classes))
	for i, label := range out.Classes {
		preds[i] = triage.Prediction{Label: label, Probability: out.Probabilities[i]}
	}
	return preds, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
