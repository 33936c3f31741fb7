package symptomapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/carepath/internal/triage"
)

// AssessmentIDHeader carries the assessment ID on successful predictions.
const AssessmentIDHeader = "X-Assessment-Id"

// predictRequest accepts the symptom text as either "symptoms" or "text".
type predictRequest struct {
	Symptoms *string `json:"symptoms"`
	Text     *string `json:"text"`
	TopN     int     `json:"top_n"`
}

func (p *predictRequest) query() triage.Query {
	q := triage.Query{TopN: p.TopN}
	switch {
	case p.Symptoms != nil:
		q.Text = *p.Symptoms
	case p.Text != nil:
		q.Text = *p.Text
	}
	return q
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeJSON(w, r, http.StatusBadRequest, triage.NewErrorResponse(
			&triage.ValidationError{Field: "body", Message: "No JSON data provided"}, ""))
		return
	}

	result, err := a.svc.Predict(r.Context(), req.query())
	if err != nil {
		status := http.StatusInternalServerError
		var ve *triage.ValidationError
		var ce *triage.ClassifierError
		switch {
		case errors.As(err, &ve):
			status = http.StatusBadRequest
		case errors.As(err, &ce):
			status = http.StatusBadGateway
		default:
			a.logger.Error(r.Context(), err, "prediction failed")
		}
		a.writeJSON(w, r, status, triage.NewErrorResponse(err, a.svc.Disclaimer()))
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("carepath.assessment.id", result.ID),
		attribute.Int("carepath.esi_level", result.EmergencySeverity.ESILevel),
	)

	w.Header().Set(AssessmentIDHeader, result.ID)
	a.writeJSON(w, r, http.StatusOK, result)
}
