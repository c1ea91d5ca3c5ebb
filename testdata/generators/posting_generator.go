// Command posting_generator produces synthetic GL posting CSV files for
// testing and benchmarking. A configurable share of the postings is
// emitted as planted duplicate clusters: copies that agree on account,
// amount, user, document type, and both dates, so the most specific
// detection rule picks them up.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// PostingGenerator generates GL posting CSV files
type PostingGenerator struct {
	Count         int
	DuplicateRate float64
	ClusterSize   int
	StartDate     time.Time
	EndDate       time.Time
	MinAmount     decimal.Decimal
	MaxAmount     decimal.Decimal
	rng           *rand.Rand
}

// PostingTemplate represents one CSV row
type PostingTemplate struct {
	ID             string
	GLAccount      string
	Amount         decimal.Decimal
	Currency       string
	User           string
	PostingDate    time.Time
	DocumentDate   time.Time
	DocumentNumber string
	DocumentType   string
	Type           string
	Text           string
	FiscalYear     int
	PostingPeriod  int
	ProfitCenter   string
	CostCenter     string
}

var (
	glAccounts    = []string{"100100", "100200", "200100", "300400", "400100", "500100", "600200", "700300"}
	users         = []string{"JSMITH", "MALI", "KCHEN", "ANOUR", "RPATEL", "LWANG"}
	documentTypes = []string{"SA", "KR", "DR", "AB", "RE"}
	profitCenters = []string{"PC1000", "PC2000", "PC3000"}
	costCenters   = []string{"CC100", "CC200", "CC300", "CC400"}
	texts         = []string{"Monthly accrual", "Vendor invoice", "Customer payment", "Reclass entry", "Depreciation run"}
)

func main() {
	var (
		output        = flag.String("output", "generated_postings.csv", "Output CSV file path")
		count         = flag.Int("count", 10000, "Number of postings to generate")
		duplicateRate = flag.Float64("duplicate-rate", 0.05, "Share of postings emitted as duplicate clusters (0.0-1.0)")
		clusterSize   = flag.Int("cluster-size", 3, "Number of postings per planted duplicate cluster")
		startDate     = flag.String("start-date", "2024-01-01", "Start date (YYYY-MM-DD)")
		endDate       = flag.String("end-date", "2024-12-31", "End date (YYYY-MM-DD)")
		minAmount     = flag.Float64("min-amount", 10.00, "Minimum posting amount")
		maxAmount     = flag.Float64("max-amount", 500000.00, "Maximum posting amount")
		seed          = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		log.Fatalf("Invalid end date: %v", err)
	}
	if *duplicateRate < 0 || *duplicateRate > 1 {
		log.Fatalf("duplicate-rate must be between 0.0 and 1.0, got %f", *duplicateRate)
	}
	if *clusterSize < 2 {
		log.Fatalf("cluster-size must be at least 2, got %d", *clusterSize)
	}

	generator := &PostingGenerator{
		Count:         *count,
		DuplicateRate: *duplicateRate,
		ClusterSize:   *clusterSize,
		StartDate:     start,
		EndDate:       end,
		MinAmount:     decimal.NewFromFloat(*minAmount),
		MaxAmount:     decimal.NewFromFloat(*maxAmount),
		rng:           rand.New(rand.NewSource(*seed)),
	}

	postings, planted := generator.Generate()

	if err := generator.WriteToCSV(*output, postings); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}

	fmt.Printf("Generated %d postings in %s\n", len(postings), *output)
	fmt.Printf("Planted duplicate clusters: %d (%d postings)\n", planted, planted*(*clusterSize))
	fmt.Printf("Date range: %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Seed used: %d\n", *seed)
}

// Generate produces the posting set and returns it with the number of
// planted duplicate clusters
func (pg *PostingGenerator) Generate() ([]PostingTemplate, int) {
	postings := make([]PostingTemplate, 0, pg.Count)

	duplicateLines := int(float64(pg.Count) * pg.DuplicateRate)
	clusters := duplicateLines / pg.ClusterSize
	id := 1

	for c := 0; c < clusters; c++ {
		base := pg.randomPosting(id)
		for m := 0; m < pg.ClusterSize; m++ {
			dup := base
			dup.ID = fmt.Sprintf("GL%08d", id)
			dup.DocumentNumber = fmt.Sprintf("DOC%08d", id)
			id++
			postings = append(postings, dup)
		}
	}

	for len(postings) < pg.Count {
		postings = append(postings, pg.randomPosting(id))
		id++
	}

	// Shuffle so planted clusters are not adjacent in the file
	pg.rng.Shuffle(len(postings), func(i, j int) {
		postings[i], postings[j] = postings[j], postings[i]
	})

	return postings, clusters
}

func (pg *PostingGenerator) randomPosting(id int) PostingTemplate {
	duration := pg.EndDate.Sub(pg.StartDate)
	postingDate := pg.StartDate.Add(time.Duration(pg.rng.Int63n(int64(duration)))).Truncate(24 * time.Hour)
	documentDate := postingDate.AddDate(0, 0, -pg.rng.Intn(5))

	amountRange := pg.MaxAmount.Sub(pg.MinAmount)
	amount := decimal.NewFromFloat(pg.rng.Float64()).Mul(amountRange).Add(pg.MinAmount).Round(2)

	txType := "DEBIT"
	if pg.rng.Float64() < 0.5 {
		txType = "CREDIT"
	}

	return PostingTemplate{
		ID:             fmt.Sprintf("GL%08d", id),
		GLAccount:      glAccounts[pg.rng.Intn(len(glAccounts))],
		Amount:         amount,
		Currency:       "SAR",
		User:           users[pg.rng.Intn(len(users))],
		PostingDate:    postingDate,
		DocumentDate:   documentDate,
		DocumentNumber: fmt.Sprintf("DOC%08d", id),
		DocumentType:   documentTypes[pg.rng.Intn(len(documentTypes))],
		Type:           txType,
		Text:           texts[pg.rng.Intn(len(texts))],
		FiscalYear:     postingDate.Year(),
		PostingPeriod:  int(postingDate.Month()),
		ProfitCenter:   profitCenters[pg.rng.Intn(len(profitCenters))],
		CostCenter:     costCenters[pg.rng.Intn(len(costCenters))],
	}
}

// WriteToCSV writes the postings in the canonical standard format
func (pg *PostingGenerator) WriteToCSV(path string, postings []PostingTemplate) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{
		"id", "gl_account", "amount", "local_currency", "user_name",
		"posting_date", "document_date", "document_number", "document_type",
		"transaction_type", "text", "fiscal_year", "posting_period",
		"profit_center", "cost_center",
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, p := range postings {
		record := []string{
			p.ID,
			p.GLAccount,
			p.Amount.StringFixed(2),
			p.Currency,
			p.User,
			p.PostingDate.Format("2006-01-02"),
			p.DocumentDate.Format("2006-01-02"),
			p.DocumentNumber,
			p.DocumentType,
			p.Type,
			p.Text,
			strconv.Itoa(p.FiscalYear),
			strconv.Itoa(p.PostingPeriod),
			p.ProfitCenter,
			p.CostCenter,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
