package analyzer

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"gl-duplicate-analyzer/internal/enhance"
	"gl-duplicate-analyzer/internal/models"
	"gl-duplicate-analyzer/pkg/errors"

	"github.com/shopspring/decimal"
)

type stubPredictor struct {
	trained     bool
	predictions []enhance.Prediction
	err         error
}

func (p *stubPredictor) IsTrained() bool {
	return p.trained
}

func (p *stubPredictor) PredictDuplicates(ctx context.Context, transactions []*models.Transaction) ([]enhance.Prediction, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.predictions, nil
}

func createTestPostings() []*models.Transaction {
	posted := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	build := func(id string) *models.Transaction {
		return &models.Transaction{
			ID:           id,
			GLAccount:    "100100",
			Amount:       decimal.NewFromFloat(500.00),
			User:         "JSMITH",
			DocumentType: "SA",
			PostingDate:  posted,
			DocumentDate: posted,
			Type:         models.TransactionTypeDebit,
		}
	}
	return []*models.Transaction{
		build("GL001"),
		build("GL002"),
		{ID: "GL003", GLAccount: "999999", Amount: decimal.NewFromInt(7), Type: models.TransactionTypeCredit},
	}
}

func TestNewAnalyzerDefaults(t *testing.T) {
	a, err := New(nil, nil, nil)
	if err != nil {
		t.Fatalf("Expected analyzer with defaults, got error: %v", err)
	}
	if a == nil {
		t.Fatal("Expected analyzer to be created")
	}
}

func TestNewAnalyzerRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"missing engine", &Config{Report: DefaultConfig().Report}},
		{"missing report", &Config{Engine: DefaultConfig().Engine}},
		{
			"threshold below minimum",
			func() *Config {
				c := DefaultConfig()
				c.Engine.Threshold = 1
				return c
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config, nil, nil)
			if err == nil {
				t.Fatal("Expected configuration error")
			}
			analyzerErr, ok := errors.AsAnalyzerError(err)
			if !ok {
				t.Fatalf("Expected a typed configuration error, got %T", err)
			}
			if analyzerErr.Category != errors.CategoryConfiguration {
				t.Errorf("Expected configuration category, got %s", analyzerErr.Category)
			}
		})
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a, err := New(nil, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.AnalysisInfo.TotalTransactions != 0 {
		t.Errorf("Expected 0 transactions, got %d", result.AnalysisInfo.TotalTransactions)
	}
	if result.MLEnhancement == nil {
		t.Fatal("Expected ML section on every analysis result")
	}
	if result.MLEnhancement.MLModelAvailable || result.MLEnhancement.MLModelTrained {
		t.Error("Expected unavailable ML section without a predictor")
	}
	if result.MLEnhancement.MLEnhancedDuplicates == nil {
		t.Error("Expected non-nil ML prediction list")
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	a, err := New(nil, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := a.Analyze(context.Background(), createTestPostings())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.AnalysisInfo.TotalTransactions != 3 {
		t.Errorf("Expected 3 transactions, got %d", result.AnalysisInfo.TotalTransactions)
	}
	if result.AnalysisInfo.TotalDuplicateGroups != 1 {
		t.Fatalf("Expected 1 duplicate group, got %d", result.AnalysisInfo.TotalDuplicateGroups)
	}
	if result.AnalysisInfo.TotalDuplicateTransactions != 2 {
		t.Errorf("Expected 2 duplicate transactions, got %d", result.AnalysisInfo.TotalDuplicateTransactions)
	}
	if len(result.DuplicateList) != 2 {
		t.Fatalf("Expected 2 duplicate list entries, got %d", len(result.DuplicateList))
	}
	if result.DuplicateList[0].DuplicateType != "Type 6 Duplicate" {
		t.Errorf("Expected Type 6 entries, got %s", result.DuplicateList[0].DuplicateType)
	}
}

func TestAnalyzeWithTrainedPredictor(t *testing.T) {
	predictor := &stubPredictor{
		trained: true,
		predictions: []enhance.Prediction{
			{TransactionID: "GL001", IsDuplicate: true, DuplicateProbability: 0.93, RiskScore: 88},
		},
	}

	a, err := New(nil, predictor, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := a.Analyze(context.Background(), createTestPostings())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	ml := result.MLEnhancement
	if ml == nil {
		t.Fatal("Expected ML section")
	}
	if !ml.MLModelAvailable || !ml.MLModelTrained {
		t.Errorf("Expected available trained model, got %+v", ml)
	}
	if ml.MLDuplicatesFound != 1 || len(ml.MLEnhancedDuplicates) != 1 {
		t.Fatalf("Expected 1 ML prediction, got %+v", ml)
	}
	if ml.MLEnhancedDuplicates[0].TransactionID != "GL001" {
		t.Errorf("Unexpected prediction: %+v", ml.MLEnhancedDuplicates[0])
	}
}

func TestAnalyzePredictorFailureDegrades(t *testing.T) {
	predictor := &stubPredictor{trained: true, err: fmt.Errorf("model endpoint unreachable")}

	a, err := New(nil, predictor, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := a.Analyze(context.Background(), createTestPostings())
	if err != nil {
		t.Fatalf("Expected analysis to survive predictor failure, got %v", err)
	}

	ml := result.MLEnhancement
	if ml == nil {
		t.Fatal("Expected ML section")
	}
	if ml.MLModelAvailable {
		t.Error("Expected unavailable ML section after prediction failure")
	}
	if !ml.MLModelTrained {
		t.Error("Expected trained flag to remain set")
	}
	if ml.MLError == "" {
		t.Error("Expected the prediction error to be recorded")
	}
	if result.AnalysisInfo.TotalDuplicateGroups != 1 {
		t.Errorf("Expected rule-based result to be unaffected, got %d groups",
			result.AnalysisInfo.TotalDuplicateGroups)
	}
}

// createScalePostings builds a shuffled synthetic posting set with a known
// number of planted exact-duplicate pairs. Every posting gets a globally
// unique amount, so only the planted pairs can group under any rule.
func createScalePostings(total, plantedPairs int) []*models.Transaction {
	rng := rand.New(rand.NewSource(42))
	accounts := []string{"100100", "200200", "300400", "400100", "500100"}
	users := []string{"JSMITH", "MALI", "KCHEN", "ANOUR"}

	nextAmount := int64(0)
	uniqueAmount := func() decimal.Decimal {
		nextAmount++
		return decimal.New(100000+nextAmount, -2)
	}
	randomDay := func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rng.Intn(365))
	}

	transactions := make([]*models.Transaction, 0, total)
	for p := 0; p < plantedPairs; p++ {
		day := randomDay()
		base := models.Transaction{
			GLAccount:    accounts[rng.Intn(len(accounts))],
			Amount:       uniqueAmount(),
			User:         users[rng.Intn(len(users))],
			DocumentType: "SA",
			PostingDate:  day,
			DocumentDate: day,
			Type:         models.TransactionTypeDebit,
		}
		for m := 0; m < 2; m++ {
			dup := base
			dup.ID = fmt.Sprintf("GL%05d", len(transactions)+1)
			transactions = append(transactions, &dup)
		}
	}
	for len(transactions) < total {
		day := randomDay()
		transactions = append(transactions, &models.Transaction{
			ID:           fmt.Sprintf("GL%05d", len(transactions)+1),
			GLAccount:    accounts[rng.Intn(len(accounts))],
			Amount:       uniqueAmount(),
			User:         users[rng.Intn(len(users))],
			DocumentType: "KR",
			PostingDate:  day,
			DocumentDate: day,
			Type:         models.TransactionTypeCredit,
		})
	}
	rng.Shuffle(len(transactions), func(i, j int) {
		transactions[i], transactions[j] = transactions[j], transactions[i]
	})
	return transactions
}

func TestAnalyzeAtScaleWithPlantedDuplicateRate(t *testing.T) {
	const (
		total        = 10000
		plantedPairs = 250 // 500 duplicate postings, a 5% rate
	)

	a, err := New(nil, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := a.Analyze(context.Background(), createScalePostings(total, plantedPairs))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	info := result.AnalysisInfo
	if info.TotalTransactions != total {
		t.Errorf("Expected %d transactions, got %d", total, info.TotalTransactions)
	}
	if info.TotalDuplicateGroups != plantedPairs {
		t.Errorf("Expected %d duplicate groups, got %d", plantedPairs, info.TotalDuplicateGroups)
	}
	if info.TotalDuplicateTransactions != 2*plantedPairs {
		t.Errorf("Expected %d duplicate transactions, got %d", 2*plantedPairs, info.TotalDuplicateTransactions)
	}
	if len(result.DuplicateList) != 2*plantedPairs {
		t.Errorf("Expected %d duplicate list entries, got %d", 2*plantedPairs, len(result.DuplicateList))
	}

	if result.DetailedInsights.ComparativeAnalysis == nil {
		t.Fatal("Expected comparative analysis")
	}
	rate := result.DetailedInsights.ComparativeAnalysis.DuplicatePercentage.TransactionCount
	if rate != 5.0 {
		t.Errorf("Expected duplicate rate 5.0, got %f", rate)
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	a, err := New(nil, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Analyze(ctx, createTestPostings())
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}
	analyzerErr, ok := errors.AsAnalyzerError(err)
	if !ok {
		t.Fatalf("Expected a typed analysis error, got %T", err)
	}
	if analyzerErr.Category != errors.CategoryAnalysis {
		t.Errorf("Expected analysis category, got %s", analyzerErr.Category)
	}
}
