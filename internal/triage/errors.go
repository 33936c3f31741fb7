package triage

import "errors"

// ValidationError reports a query rejected before the classifier is called.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ClassifierError reports a failed or unusable classifier call. The cause is
// kept for logging but never shown to callers.
type ClassifierError struct {
	Err error
}

func (e *ClassifierError) Error() string { return "Prediction failed: classifier unavailable" }

func (e *ClassifierError) Unwrap() error { return e.Err }

// ErrorResponse is the wire shape of a failed prediction.
type ErrorResponse struct {
	Error       string      `json:"error"`
	Predictions []Candidate `json:"predictions"`
	Disclaimer  string      `json:"disclaimer,omitempty"`
}

// NewErrorResponse converts an error returned by Service.Predict into the
// error shape. Validation failures carry no disclaimer; every other failure
// does.
func NewErrorResponse(err error, disclaimer string) *ErrorResponse {
	resp := &ErrorResponse{
		Error:       err.Error(),
		Predictions: []Candidate{},
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return resp
	}
	var ce *ClassifierError
	if !errors.As(err, &ce) {
		resp.Error = "Prediction failed: internal error"
	}
	resp.Disclaimer = disclaimer
	return resp
}
