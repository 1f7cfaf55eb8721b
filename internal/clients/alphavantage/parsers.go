package alphavantage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseFloat64 parses Alpha Vantage numeric strings, returning 0 for placeholders.
func parseFloat64(s string) float64 {
	if v := parseFloat64Ptr(s); v != nil {
		return *v
	}
	return 0
}

// parseFloat64Ptr parses Alpha Vantage numeric strings, returning nil for placeholders.
func parseFloat64Ptr(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	switch s {
	case "", "None", "null", "-":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseDate parses a YYYY-MM-DD date, returning the zero time on failure.
func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseInsiderTransactions(data []byte) ([]InsiderTransaction, error) {
	var resp insiderResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse insider transactions: %w", err)
	}

	txs := make([]InsiderTransaction, 0, len(resp.Data))
	for _, row := range resp.Data {
		txs = append(txs, InsiderTransaction{
			TransactionDate: parseDate(row.TransactionDate),
			Ticker:          row.Ticker,
			Executive:       row.Executive,
			ExecutiveTitle:  row.ExecutiveTitle,
			SecurityType:    row.SecurityType,
			Disposal:        strings.EqualFold(row.AcquisitionOrDisposal, "D"),
			Shares:          parseFloat64(row.Shares),
			SharePrice:      parseFloat64Ptr(row.SharePrice),
		})
	}

	return txs, nil
}

func parseStatement(data []byte) (*Statement, error) {
	var resp statementResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse statement: %w", err)
	}

	return &Statement{
		Symbol:           resp.Symbol,
		AnnualReports:    parseReports(resp.AnnualReports),
		QuarterlyReports: parseReports(resp.QuarterlyReports),
	}, nil
}

func parseReports(rows []map[string]string) []Report {
	reports := make([]Report, 0, len(rows))
	for _, row := range rows {
		r := Report{
			FiscalDateEnding: row["fiscalDateEnding"],
			ReportedCurrency: row["reportedCurrency"],
			Items:            make(map[string]*float64, len(row)),
		}
		for k, v := range row {
			if k == "fiscalDateEnding" || k == "reportedCurrency" {
				continue
			}
			r.Items[k] = parseFloat64Ptr(v)
		}
		reports = append(reports, r)
	}
	return reports
}
