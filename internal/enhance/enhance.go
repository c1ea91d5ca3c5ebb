// Package enhance defines the optional machine-learning collaborator that
// can run alongside the rule-based analysis. The rule-based result never
// depends on it; a missing or failing predictor only changes the
// enhancement section of the report.
package enhance

import (
	"context"

	"gl-duplicate-analyzer/internal/models"
)

// Prediction is a per-posting duplicate likelihood produced by a trained
// model.
type Prediction struct {
	TransactionID        string  `json:"transaction_id"`
	IsDuplicate          bool    `json:"is_duplicate"`
	DuplicateProbability float64 `json:"duplicate_probability"`
	RiskScore            float64 `json:"risk_score"`
}

// Predictor scores postings for duplicate likelihood. Implementations may
// call out to an external model service, so PredictDuplicates takes a
// context.
type Predictor interface {
	// IsTrained reports whether the model is ready to score postings.
	// Untrained predictors are reported as unavailable, not as errors.
	IsTrained() bool

	// PredictDuplicates scores the given postings. Only postings the
	// model flags as likely duplicates need to be returned.
	PredictDuplicates(ctx context.Context, transactions []*models.Transaction) ([]Prediction, error)
}

// NullPredictor is the default collaborator when no model is configured.
// It reports itself untrained and never scores anything.
type NullPredictor struct{}

// NewNullPredictor returns the no-op predictor.
func NewNullPredictor() *NullPredictor {
	return &NullPredictor{}
}

// IsTrained always returns false.
func (p *NullPredictor) IsTrained() bool {
	return false
}

// PredictDuplicates returns no predictions.
func (p *NullPredictor) PredictDuplicates(ctx context.Context, transactions []*models.Transaction) ([]Prediction, error) {
	return nil, nil
}
