package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/carepath/internal/triage"
)

const secretSymptoms = "my neighbour Jane Doe has crushing chest pain"

func criticalResult() *triage.Result {
	return &triage.Result{
		Timestamp: time.Date(2026, 2, 26, 14, 23, 0, 0, time.UTC),
		UserInput: secretSymptoms,
		EmergencySeverity: triage.Assessment{
			ESILevel:  triage.ESICritical,
			Severity:  "CRITICAL - LIFE THREATENING",
			Action:    "Call emergency services (108) immediately",
			WaitTime:  "Immediate",
			ColorCode: triage.ColorRed,
		},
		Predictions: []triage.Candidate{
			{Condition: "Heart attack", Confidence: 0.82, ConfidencePercentage: "82.0%", Specialty: "Cardiology", Reliability: triage.ReliabilityHigh},
			{Condition: "GERD", Confidence: 0.1, ConfidencePercentage: "10.0%", Specialty: "Gastroenterology", Reliability: triage.ReliabilityLow},
		},
	}
}

func TestNotify_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		raw = string(body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	if err := n.Notify(context.Background(), "01JN123", criticalResult()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, divider, candidates, divider, context = 7 blocks
	if len(blocks) != 7 {
		t.Errorf("blocks count = %d, want 7", len(blocks))
	}

	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "ESI 1") {
		t.Errorf("header text = %q, want to contain ESI 1", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Errorf("header should contain red circle for ESI 1")
	}

	if !strings.Contains(raw, "Heart attack") || !strings.Contains(raw, "Cardiology") {
		t.Errorf("payload missing top condition or specialty: %s", raw)
	}
	if !strings.Contains(raw, "01JN123") {
		t.Errorf("payload missing assessment id: %s", raw)
	}
}

func TestNotify_OmitsUserInput(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(buildMessage("01JN123", criticalResult()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, frag := range []string{secretSymptoms, "Jane Doe", "crushing"} {
		if strings.Contains(string(data), frag) {
			t.Errorf("payload contains user text fragment %q", frag)
		}
	}
}

func TestNotify_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("", log.Nop())
	if err := n.Notify(context.Background(), "id", &triage.Result{}); err != nil {
		t.Fatalf("Notify with empty URL should be no-op, got: %v", err)
	}
}

func TestNotify_NilLogger(t *testing.T) {
	t.Parallel()

	n := New("", nil)
	if n.logger == nil {
		t.Fatal("expected nop logger")
	}
}

func TestCandidatesBlock_Truncates(t *testing.T) {
	t.Parallel()

	r := criticalResult()
	r.Predictions = nil
	for range 100 {
		r.Predictions = append(r.Predictions, triage.Candidate{
			Condition:            strings.Repeat("x", 100),
			ConfidencePercentage: "1.0%",
			Reliability:          triage.ReliabilityLow,
		})
	}

	block := candidatesBlock(r)
	text := block["text"].(map[string]any)["text"].(string)
	prefix := "*Candidates*\n\n"
	if len(text) > maxCandidatesLen+len(prefix) {
		t.Errorf("candidates text length = %d, expected <= %d", len(text), maxCandidatesLen+len(prefix))
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("expected truncated candidates to end with ...")
	}
}

func TestCandidatesBlock_Empty(t *testing.T) {
	t.Parallel()

	block := candidatesBlock(&triage.Result{})
	text := block["text"].(map[string]any)["text"].(string)
	if !strings.Contains(text, "No candidates") {
		t.Errorf("text = %q, want placeholder", text)
	}
}

func TestColorEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		color triage.ColorCode
		want  string
	}{
		{triage.ColorRed, "\U0001f534"},
		{triage.ColorOrange, "\U0001f7e0"},
		{triage.ColorYellow, "\U0001f7e1"},
		{triage.ColorGreen, "\U0001f7e2"},
		{triage.ColorBlue, "\U0001f535"},
		{"", "\U0001f535"},
	}

	for _, tt := range tests {
		t.Run(string(tt.color), func(t *testing.T) {
			t.Parallel()
			if got := colorEmoji(tt.color); got != tt.want {
				t.Errorf("colorEmoji(%q) = %q, want %q", tt.color, got, tt.want)
			}
		})
	}
}

func TestContextBlock_ZeroTimestamp(t *testing.T) {
	t.Parallel()

	block := contextBlock("abc", &triage.Result{})
	elems := block["elements"].([]map[string]any)
	text := elems[0]["text"].(string)
	if !strings.Contains(text, "assessment abc") {
		t.Errorf("context text = %q", text)
	}
	if strings.Contains(text, "0001-01-01") {
		t.Errorf("zero timestamp leaked into context: %q", text)
	}
}

func FuzzSlackBuild(f *testing.F) {
	f.Add("Heart attack", "Cardiology", "CRITICAL - LIFE THREATENING", "01JN123", 1)
	f.Add("", "", "", "", 0)
	f.Add("<@U123> mention", "*bold*", "_italic_ ~strike~", "id", 3)
	f.Add("cond\x00\x01\x02", "spec\nline", "sev\ttab", "i\x00d", 5)
	f.Add(strings.Repeat("A", 5000), "General Medicine", strings.Repeat("x", 10000), "id", 2)

	f.Fuzz(func(t *testing.T, condition, specialty, severity, id string, level int) {
		result := &triage.Result{
			Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EmergencySeverity: triage.Assessment{
				ESILevel: level,
				Severity: severity,
			},
			Predictions: []triage.Candidate{{Condition: condition, Specialty: specialty}},
		}

		// Must not panic
		msg := buildMessage(id, result)

		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("buildMessage produced non-marshalable output: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("buildMessage JSON does not round-trip: %v", err)
		}

		blocks, ok := decoded["blocks"].([]any)
		if !ok {
			t.Fatal("expected blocks array")
		}
		if len(blocks) != 7 {
			t.Fatalf("blocks count = %d, want 7", len(blocks))
		}
	})
}

func TestNotify_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	err := n.Notify(context.Background(), "01JN789", criticalResult())
	if err == nil {
		t.Fatal("expected error on non-OK status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q, want to contain status code 500", err.Error())
	}
}

func TestNotify_ImplementsNotifier(t *testing.T) {
	t.Parallel()
	var _ triage.Notifier = New("", log.Nop())
}
