// Package parsers reads general-ledger posting exports from CSV files.
//
// Real-world GL exports vary widely: header names differ between systems,
// date and amount formats are inconsistent, and individual rows are often
// malformed. The parsers here normalize those variations into
// models.Transaction values and degrade per row instead of failing the
// whole file: a bad row is counted and reported in ParseStats while the
// remaining rows continue to parse.
package parsers

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"gl-duplicate-analyzer/pkg/errors"
	"gl-duplicate-analyzer/pkg/logger"
)

// ParseError records one row-level problem encountered during parsing
type ParseError struct {
	Line    int
	Column  int
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error at line %d (%s='%s'): %s: %v",
			e.Line, e.Field, e.Value, e.Message, e.Err)
	}
	return fmt.Sprintf("parse error at line %d (%s='%s'): %s",
		e.Line, e.Field, e.Value, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseConfig holds low-level CSV reading options
type ParseConfig struct {
	HasHeader        bool
	Delimiter        rune
	Comment          rune
	TrimLeadingSpace bool
	SkipEmptyRows    bool
	MaxFieldSize     int
	ValidateEncoding bool
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		HasHeader:        true,
		Delimiter:        ',',
		Comment:          0,
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		MaxFieldSize:     1000000, // 1MB per field
		ValidateEncoding: true,
	}
}

// BaseParser provides the CSV plumbing shared by the concrete parsers
type BaseParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewBaseParser creates a BaseParser with the given configuration
func NewBaseParser(config *ParseConfig) *BaseParser {
	if config == nil {
		config = DefaultParseConfig()
	}

	log := logger.GetGlobalLogger().WithComponent("base_parser")
	log.WithFields(logger.Fields{
		"has_header":        config.HasHeader,
		"delimiter":         string(config.Delimiter),
		"validate_encoding": config.ValidateEncoding,
	}).Debug("Created base parser")

	return &BaseParser{
		config: config,
		logger: log,
	}
}

// ParseContext holds state that accumulates while reading one file
type ParseContext struct {
	LineNumber  int
	Headers     []string
	HeaderMap   map[string]int
	RecordCount int
	ErrorCount  int
	Errors      []*ParseError
	ctx         context.Context
}

// NewParseContext creates a parsing context bound to ctx
func NewParseContext(ctx context.Context) *ParseContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ParseContext{
		Headers:   make([]string, 0),
		HeaderMap: make(map[string]int),
		Errors:    make([]*ParseError, 0),
		ctx:       ctx,
	}
}

// IsCancelled reports whether the bound context is done
func (pc *ParseContext) IsCancelled() bool {
	select {
	case <-pc.ctx.Done():
		return true
	default:
		return false
	}
}

// AddError records a row-level error
func (pc *ParseContext) AddError(column int, field, value, message string, err error) {
	pc.Errors = append(pc.Errors, &ParseError{
		Line:    pc.LineNumber,
		Column:  column,
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	})
	pc.ErrorCount++
}

// GetColumnIndex returns the index of a column by name (case-insensitive),
// or -1 if not found
func (pc *ParseContext) GetColumnIndex(name string) int {
	if index, exists := pc.HeaderMap[name]; exists {
		return index
	}
	lowerName := strings.ToLower(name)
	for header, index := range pc.HeaderMap {
		if strings.ToLower(header) == lowerName {
			return index
		}
	}
	return -1
}

// OpenFile opens a CSV file and returns a configured csv.Reader
func (bp *BaseParser) OpenFile(filePath string) (*os.File, *csv.Reader, error) {
	bp.logger.WithField("file_path", filePath).Debug("Opening CSV file")

	file, err := os.Open(filePath)
	if err != nil {
		bp.logger.WithError(err).WithField("file_path", filePath).Error("Failed to open CSV file")
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, filePath, err)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.FileError(errors.CodeFilePermission, filePath, err)
		}
		return nil, nil, errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}

	if bp.config.ValidateEncoding {
		if err := bp.validateEncoding(file, filePath); err != nil {
			file.Close()
			return nil, nil, err
		}
		if _, err := file.Seek(0, 0); err != nil {
			file.Close()
			return nil, nil, errors.FileError(errors.CodeFileCorrupted, filePath, err)
		}
	}

	reader := csv.NewReader(file)
	reader.Comma = bp.config.Delimiter
	reader.Comment = bp.config.Comment
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	return file, reader, nil
}

// validateEncoding checks the first lines of the file for valid UTF-8
func (bp *BaseParser) validateEncoding(file *os.File, filePath string) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() && lineNum < 100 {
		lineNum++
		if !utf8.Valid(scanner.Bytes()) {
			return errors.ParseError(
				errors.CodeInvalidFormat,
				filePath,
				lineNum,
				"encoding",
				"",
				fmt.Errorf("invalid UTF-8 encoding detected"),
			).WithSuggestion("Save the file in UTF-8 encoding and try again")
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}
	return nil
}

// ReadHeaders reads the header row and verifies required columns exist
func (bp *BaseParser) ReadHeaders(reader *csv.Reader, parseCtx *ParseContext, requiredHeaders []string) error {
	if !bp.config.HasHeader {
		if len(requiredHeaders) > 0 {
			parseCtx.Headers = make([]string, len(requiredHeaders))
			copy(parseCtx.Headers, requiredHeaders)
		}
		bp.buildHeaderMap(parseCtx)
		return nil
	}

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return errors.ValidationError(
				errors.CodeMissingField,
				"file_content",
				"empty",
				nil,
			).WithSuggestion("Ensure the file contains header and data rows")
		}
		return errors.ParseError(
			errors.CodeInvalidFormat,
			"",
			1,
			"headers",
			"",
			err,
		).WithSuggestion("Check the file format and ensure it's a valid CSV")
	}

	parseCtx.LineNumber++
	parseCtx.Headers = make([]string, len(headers))
	for i, header := range headers {
		parseCtx.Headers[i] = strings.TrimSpace(header)
	}
	bp.buildHeaderMap(parseCtx)

	bp.logger.WithField("headers", parseCtx.Headers).Debug("Read CSV headers")

	if len(requiredHeaders) > 0 {
		var missing []string
		for _, header := range requiredHeaders {
			if parseCtx.GetColumnIndex(header) == -1 {
				missing = append(missing, header)
			}
		}
		if len(missing) > 0 {
			bp.logger.WithFields(logger.Fields{
				"missing_headers":   missing,
				"available_headers": parseCtx.Headers,
			}).Error("Required headers are missing")

			return errors.ParseError(
				errors.CodeMissingColumn,
				"",
				parseCtx.LineNumber,
				"headers",
				strings.Join(missing, ", "),
				nil,
			).WithSuggestion(fmt.Sprintf("Ensure the CSV file contains these headers: %s", strings.Join(missing, ", ")))
		}
	}

	return nil
}

func (bp *BaseParser) buildHeaderMap(parseCtx *ParseContext) {
	parseCtx.HeaderMap = make(map[string]int)
	for i, header := range parseCtx.Headers {
		parseCtx.HeaderMap[header] = i
	}
}

// ReadRecord reads the next non-empty CSV record
func (bp *BaseParser) ReadRecord(reader *csv.Reader, parseCtx *ParseContext) ([]string, error) {
	for {
		if parseCtx.IsCancelled() {
			return nil, errors.InternalError(
				errors.CodeUnexpectedError,
				"csv_parsing",
				fmt.Errorf("parsing cancelled"),
			)
		}

		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil, err
			}
			bp.logger.WithError(err).WithField("line_number", parseCtx.LineNumber+1).Warn("Failed to read CSV record")
			return nil, err
		}

		parseCtx.LineNumber++

		if bp.config.SkipEmptyRows && isEmptyRecord(record) {
			continue
		}

		if bp.config.MaxFieldSize > 0 {
			for i, field := range record {
				if len(field) > bp.config.MaxFieldSize {
					parseCtx.AddError(i, fmt.Sprintf("field_%d", i), truncateValue(field),
						fmt.Sprintf("field exceeds maximum size of %d bytes", bp.config.MaxFieldSize), nil)
					return nil, errors.ParseError(
						errors.CodeInvalidData,
						"",
						parseCtx.LineNumber,
						fmt.Sprintf("field_%d", i),
						truncateValue(field),
						fmt.Errorf("field size limit exceeded"),
					)
				}
			}
		}

		return record, nil
	}
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func truncateValue(value string) string {
	if len(value) > 50 {
		return value[:50] + "..."
	}
	return value
}

// FieldValue returns the trimmed value of the named column, or "" when the
// column is absent or the row is short. Missing optional columns are not
// errors in GL exports.
func (bp *BaseParser) FieldValue(record []string, parseCtx *ParseContext, fieldName string) string {
	index := parseCtx.GetColumnIndex(fieldName)
	if index == -1 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

// ParseStats summarizes one parsing run
type ParseStats struct {
	TotalLines    int
	RecordsParsed int
	RecordsValid  int
	ErrorCount    int
	Errors        []*ParseError
}

// NewParseStats creates an empty ParseStats
func NewParseStats() *ParseStats {
	return &ParseStats{
		Errors: make([]*ParseError, 0),
	}
}

// AddError records a row-level error in the statistics
func (ps *ParseStats) AddError(err *ParseError) {
	ps.Errors = append(ps.Errors, err)
	ps.ErrorCount++
}

// HasErrors returns true if any rows failed to parse
func (ps *ParseStats) HasErrors() bool {
	return ps.ErrorCount > 0
}

// String returns a human-readable summary
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Parsed %d lines, %d records (%d valid), %d errors",
		ps.TotalLines, ps.RecordsParsed, ps.RecordsValid, ps.ErrorCount)
}

// SampleErrors returns up to maxSamples error messages for logging
func (ps *ParseStats) SampleErrors(maxSamples int) []string {
	if len(ps.Errors) == 0 {
		return nil
	}

	limit := len(ps.Errors)
	if maxSamples > 0 && maxSamples < limit {
		limit = maxSamples
	}

	samples := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		samples = append(samples, ps.Errors[i].Error())
	}
	return samples
}
