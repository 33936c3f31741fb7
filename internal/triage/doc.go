// Package triage provides the decision layer of carepath's symptom checker.
// It defines the Engine (pure severity, specialty and reliability logic), the
// Service (classifier call, metrics, escalation), the keyword Tables, and the
// result models returned to callers.
package triage
