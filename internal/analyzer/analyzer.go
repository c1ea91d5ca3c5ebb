// Package analyzer orchestrates a full duplicate analysis run: canonical
// frame construction, rule-based grouping, report assembly, and the
// optional ML enhancement pass.
package analyzer

import (
	"context"
	"time"

	"gl-duplicate-analyzer/internal/catalog"
	"gl-duplicate-analyzer/internal/engine"
	"gl-duplicate-analyzer/internal/enhance"
	"gl-duplicate-analyzer/internal/frame"
	"gl-duplicate-analyzer/internal/models"
	"gl-duplicate-analyzer/internal/report"
	"gl-duplicate-analyzer/pkg/errors"
	"gl-duplicate-analyzer/pkg/logger"
)

// Config bundles the configuration of the analysis stages.
type Config struct {
	Engine *engine.Config `json:"engine"`
	Report *report.Config `json:"report"`
}

// DefaultConfig returns the standard analysis configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: engine.DefaultConfig(),
		Report: report.DefaultConfig(),
	}
}

// Validate checks both stage configurations.
func (c *Config) Validate() error {
	if c.Engine == nil {
		return errors.ConfigurationError(errors.CodeMissingConfig, "engine", nil, nil)
	}
	if c.Report == nil {
		return errors.ConfigurationError(errors.CodeMissingConfig, "report", nil, nil)
	}
	if err := c.Engine.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "engine", c.Engine, err)
	}
	if err := c.Report.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "report", c.Report, err)
	}
	return nil
}

// Analyzer runs the complete duplicate analysis pipeline.
type Analyzer struct {
	config    *Config
	engine    *engine.GroupingEngine
	builder   *report.Builder
	predictor enhance.Predictor
	logger    logger.Logger
}

// New creates an Analyzer. A nil config uses the defaults; a nil predictor
// disables the ML enhancement pass.
func New(config *Config, predictor enhance.Predictor, log logger.Logger) (*Analyzer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if predictor == nil {
		predictor = enhance.NewNullPredictor()
	}
	return &Analyzer{
		config:    config,
		engine:    engine.NewGroupingEngine(config.Engine, catalog.DefaultRules()),
		builder:   report.NewBuilder(config.Report, log),
		predictor: predictor,
		logger:    log.WithComponent("analyzer"),
	}, nil
}

// Analyze runs the pipeline over the given postings and returns the
// consolidated result. Empty input yields the canonical empty result, not
// an error. Input transactions are treated as read-only.
func (a *Analyzer) Analyze(ctx context.Context, transactions []*models.Transaction) (*report.AnalysisResult, error) {
	start := time.Now()
	threshold := a.config.Engine.Threshold

	a.logger.WithFields(logger.Fields{
		"transactions": len(transactions),
		"threshold":    threshold,
	}).Info("Starting duplicate analysis")

	if len(transactions) == 0 {
		result := report.EmptyResult(threshold)
		result.MLEnhancement = a.runEnhancement(ctx, transactions)
		a.logger.Info("No transactions to analyze, returning empty result")
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.AnalysisError(errors.CodeProcessingError, "frame construction", err)
	}

	f := frame.Build(transactions)
	groups := a.engine.Group(f)

	if err := ctx.Err(); err != nil {
		return nil, errors.AnalysisError(errors.CodeProcessingError, "report assembly", err)
	}

	result := a.builder.Build(f, groups, threshold)
	result.MLEnhancement = a.runEnhancement(ctx, transactions)

	a.logger.WithFields(logger.Fields{
		"analysis_id":      result.AnalysisInfo.AnalysisID,
		"duplicate_groups": result.AnalysisInfo.TotalDuplicateGroups,
		"duration":         time.Since(start).String(),
	}).Info("Duplicate analysis completed")

	return result, nil
}

// runEnhancement executes the optional ML pass. Failures degrade to an
// unavailable enhancement section; they never fail the analysis.
func (a *Analyzer) runEnhancement(ctx context.Context, transactions []*models.Transaction) *report.MLEnhancement {
	ml := &report.MLEnhancement{
		MLEnhancedDuplicates: []report.MLPrediction{},
	}

	if !a.predictor.IsTrained() {
		return ml
	}
	ml.MLModelTrained = true

	predictions, err := a.predictor.PredictDuplicates(ctx, transactions)
	if err != nil {
		wrapped := errors.EnhancementError(errors.CodePredictionFailed, "duplicate_predictor", err)
		a.logger.WithError(wrapped).Warn("Continuing with rule-based results only")
		ml.MLError = err.Error()
		return ml
	}

	ml.MLModelAvailable = true
	ml.MLDuplicatesFound = len(predictions)
	for _, p := range predictions {
		ml.MLEnhancedDuplicates = append(ml.MLEnhancedDuplicates, report.MLPrediction{
			TransactionID:        p.TransactionID,
			IsDuplicate:          p.IsDuplicate,
			DuplicateProbability: p.DuplicateProbability,
			RiskScore:            p.RiskScore,
		})
	}
	return ml
}
