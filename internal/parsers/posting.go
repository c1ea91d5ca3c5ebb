package parsers

import (
	"context"
	"fmt"
	"io"
	"time"

	"gl-duplicate-analyzer/internal/models"
	"gl-duplicate-analyzer/pkg/errors"
	"gl-duplicate-analyzer/pkg/logger"
)

// PostingParser reads GL posting exports into models.Transaction values.
// Malformed rows are skipped and counted; only file-level problems (missing
// file, unreadable headers) abort the parse.
type PostingParser struct {
	*BaseParser
	config *PostingParserConfig
	logger logger.Logger
}

// NewPostingParser creates a PostingParser with the given configuration.
// A nil config uses the standard format.
func NewPostingParser(config *PostingParserConfig) (*PostingParser, error) {
	if config == nil {
		config = StandardPostingConfig
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"posting_parser_config",
			config.Name,
			err,
		).WithSuggestion("Check the posting parser column mappings")
	}

	parseConfig := DefaultParseConfig()
	parseConfig.HasHeader = config.HasHeader
	parseConfig.Delimiter = config.Delimiter

	log := logger.GetGlobalLogger().WithComponent("posting_parser")
	log.WithFields(logger.Fields{
		"format":     config.Name,
		"has_header": config.HasHeader,
		"delimiter":  string(config.Delimiter),
	}).Debug("Created posting parser")

	return &PostingParser{
		BaseParser: NewBaseParser(parseConfig),
		config:     config,
		logger:     log,
	}, nil
}

// ParsePostings parses a CSV file of GL postings
func (pp *PostingParser) ParsePostings(filePath string) ([]*models.Transaction, *ParseStats, error) {
	return pp.ParsePostingsWithContext(context.Background(), filePath)
}

// ParsePostingsWithContext parses postings with cancellation support
func (pp *PostingParser) ParsePostingsWithContext(ctx context.Context, filePath string) ([]*models.Transaction, *ParseStats, error) {
	pp.logger.WithFields(logger.Fields{
		"file_path": filePath,
		"format":    pp.config.Name,
	}).Info("Starting posting parsing")

	file, reader, err := pp.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	parseCtx := NewParseContext(ctx)
	stats := NewParseStats()

	requiredHeaders := pp.requiredHeaders()
	if err := pp.ReadHeaders(reader, parseCtx, requiredHeaders); err != nil {
		pp.logger.WithError(err).WithFields(logger.Fields{
			"file_path":        filePath,
			"required_headers": requiredHeaders,
		}).Error("Failed to read or validate headers")
		return nil, stats, err
	}

	progress := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "parse_postings",
		Logger:    pp.logger,
	})

	var transactions []*models.Transaction

	for {
		record, err := pp.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}
			if parseCtx.IsCancelled() {
				return transactions, stats, err
			}
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Message: "failed to read record",
				Err:     err,
			})
			continue
		}

		stats.RecordsParsed++
		progress.Increment()

		transaction, parseErr := pp.parsePostingFromRecord(record, parseCtx, filePath)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		if err := transaction.Validate(); err != nil {
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Field:   "transaction",
				Value:   transaction.ID,
				Message: "posting validation failed",
				Err:     err,
			})
			continue
		}

		transactions = append(transactions, transaction)
		stats.RecordsValid++
	}

	stats.TotalLines = parseCtx.LineNumber
	progress.Complete()

	pp.logger.WithFields(logger.Fields{
		"file_path":      filePath,
		"total_lines":    stats.TotalLines,
		"records_parsed": stats.RecordsParsed,
		"records_valid":  stats.RecordsValid,
		"error_count":    stats.ErrorCount,
	}).Info("Posting parsing completed")

	if stats.HasErrors() {
		pp.logger.WithField("sample_errors", stats.SampleErrors(3)).Warn("Encountered errors during parsing")
	}

	return transactions, stats, nil
}

// requiredHeaders lists the columns the file must carry. Everything else
// is optional and read when present.
func (pp *PostingParser) requiredHeaders() []string {
	return []string{
		pp.config.GetColumnName("id"),
		pp.config.GetColumnName("amount"),
	}
}

// parsePostingFromRecord builds a Transaction from one CSV row
func (pp *PostingParser) parsePostingFromRecord(record []string, parseCtx *ParseContext, filePath string) (*models.Transaction, *ParseError) {
	id := pp.FieldValue(record, parseCtx, pp.config.GetColumnName("id"))
	if id == "" {
		return nil, &ParseError{
			Line:    parseCtx.LineNumber,
			Field:   pp.config.GetColumnName("id"),
			Message: "posting ID is empty",
			Err:     errors.ValidationError(errors.CodeMissingField, "id", "", nil),
		}
	}

	amountStr := pp.FieldValue(record, parseCtx, pp.config.GetColumnName("amount"))
	amount, err := models.ParseDecimalFromString(amountStr)
	if err != nil {
		return nil, &ParseError{
			Line:    parseCtx.LineNumber,
			Field:   pp.config.GetColumnName("amount"),
			Value:   amountStr,
			Message: "invalid amount",
			Err: errors.ParseError(errors.CodeInvalidData, filePath, parseCtx.LineNumber,
				pp.config.GetColumnName("amount"), amountStr, err).
				WithSuggestion("Use decimal numbers like '1234.56'"),
		}
	}

	txType := models.TransactionTypeDebit
	if typeStr := pp.FieldValue(record, parseCtx, pp.config.GetColumnName("type")); typeStr != "" {
		txType, err = models.ParseTransactionType(typeStr)
		if err != nil {
			return nil, &ParseError{
				Line:    parseCtx.LineNumber,
				Field:   pp.config.GetColumnName("type"),
				Value:   typeStr,
				Message: "invalid transaction type",
				Err: errors.ParseError(errors.CodeInvalidData, filePath, parseCtx.LineNumber,
					pp.config.GetColumnName("type"), typeStr, err).
					WithSuggestion("Use DEBIT/CREDIT or the SAP S/H indicators"),
			}
		}
	}

	transaction := models.NewTransaction(
		id,
		pp.FieldValue(record, parseCtx, pp.config.GetColumnName("gl_account")),
		amount,
		txType,
	)

	transaction.Currency = pp.FieldValue(record, parseCtx, pp.config.GetColumnName("currency"))
	transaction.User = pp.FieldValue(record, parseCtx, pp.config.GetColumnName("user_name"))
	transaction.DocumentNumber = pp.FieldValue(record, parseCtx, pp.config.GetColumnName("document_number"))
	transaction.DocumentType = pp.FieldValue(record, parseCtx, pp.config.GetColumnName("document_type"))
	transaction.Text = pp.FieldValue(record, parseCtx, pp.config.GetColumnName("text"))
	transaction.ProfitCenter = pp.FieldValue(record, parseCtx, pp.config.GetColumnName("profit_center"))
	transaction.CostCenter = pp.FieldValue(record, parseCtx, pp.config.GetColumnName("cost_center"))

	// Dates are optional: an unparseable date leaves the posting dateless
	// rather than dropping it, matching how undated postings group under
	// the Unknown key.
	transaction.PostingDate = pp.parseOptionalDate(record, parseCtx, "posting_date")
	transaction.DocumentDate = pp.parseOptionalDate(record, parseCtx, "document_date")

	if yearStr := pp.FieldValue(record, parseCtx, pp.config.GetColumnName("fiscal_year")); yearStr != "" {
		if year, err := models.ParseFiscalPeriod(yearStr); err == nil {
			transaction.FiscalYear = year
		}
	}
	if periodStr := pp.FieldValue(record, parseCtx, pp.config.GetColumnName("posting_period")); periodStr != "" {
		if period, err := models.ParseFiscalPeriod(periodStr); err == nil {
			transaction.PostingPeriod = period
		}
	}

	return transaction, nil
}

func (pp *PostingParser) parseOptionalDate(record []string, parseCtx *ParseContext, field string) time.Time {
	value := pp.FieldValue(record, parseCtx, pp.config.GetColumnName(field))
	if value == "" {
		return time.Time{}
	}
	parsed, err := models.ParseTimeWithFormats(value)
	if err != nil {
		pp.logger.WithFields(logger.Fields{
			"line_number": parseCtx.LineNumber,
			"field":       field,
			"value":       value,
		}).Debug("Unparseable date, treating posting as undated")
		return time.Time{}
	}
	return parsed
}

// ValidatePostingFile checks that a file has the expected format by
// parsing its header and the first few data rows
func (pp *PostingParser) ValidatePostingFile(filePath string) error {
	file, reader, err := pp.OpenFile(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	parseCtx := NewParseContext(context.Background())

	if err := pp.ReadHeaders(reader, parseCtx, pp.requiredHeaders()); err != nil {
		return err
	}

	recordCount := 0
	var firstErr *ParseError
	errorCount := 0
	for recordCount < 10 {
		record, err := pp.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}
			errorCount++
			continue
		}
		recordCount++
		if _, parseErr := pp.parsePostingFromRecord(record, parseCtx, filePath); parseErr != nil {
			errorCount++
			if firstErr == nil {
				firstErr = parseErr
			}
		}
	}

	if recordCount == 0 {
		return errors.ValidationError(
			errors.CodeMissingField,
			"data_records",
			0,
			nil,
		).WithSuggestion("Ensure the file contains data rows after the header")
	}

	if errorCount > 0 {
		var cause error
		if firstErr != nil {
			cause = firstErr
		}
		return errors.ValidationError(
			errors.CodeInvalidData,
			"file_format",
			fmt.Sprintf("%d errors out of %d records tested", errorCount, recordCount),
			cause,
		).WithSuggestion("Fix the data format issues and try again")
	}

	return nil
}
