package alphavantage

import "time"

// InsiderTransaction is one filing row from INSIDER_TRANSACTIONS.
type InsiderTransaction struct {
	TransactionDate time.Time `json:"transactionDate"`
	Ticker          string    `json:"ticker"`
	Executive       string    `json:"executive"`
	ExecutiveTitle  string    `json:"executiveTitle"`
	SecurityType    string    `json:"securityType"`
	Disposal        bool      `json:"disposal"`
	Shares          float64   `json:"shares"`
	SharePrice      *float64  `json:"sharePrice"`
}

// Report is a single fiscal period of a financial statement.
// Line items Alpha Vantage reports as "None" are nil.
type Report struct {
	FiscalDateEnding string              `json:"fiscalDateEnding"`
	ReportedCurrency string              `json:"reportedCurrency"`
	Items            map[string]*float64 `json:"items"`
}

// Statement is an income statement, balance sheet or cash flow statement.
type Statement struct {
	Symbol           string   `json:"symbol"`
	AnnualReports    []Report `json:"annualReports"`
	QuarterlyReports []Report `json:"quarterlyReports"`
}

// ByPeriod keys the annual line items by fiscal date.
func (s *Statement) ByPeriod() map[string]map[string]*float64 {
	out := make(map[string]map[string]*float64, len(s.AnnualReports))
	for _, r := range s.AnnualReports {
		out[r.FiscalDateEnding] = r.Items
	}
	return out
}

type insiderResponse struct {
	Data []struct {
		TransactionDate       string `json:"transaction_date"`
		Ticker                string `json:"ticker"`
		Executive             string `json:"executive"`
		ExecutiveTitle        string `json:"executive_title"`
		SecurityType          string `json:"security_type"`
		AcquisitionOrDisposal string `json:"acquisition_or_disposal"`
		Shares                string `json:"shares"`
		SharePrice            string `json:"share_price"`
	} `json:"data"`
}

type statementResponse struct {
	Symbol           string              `json:"symbol"`
	AnnualReports    []map[string]string `json:"annualReports"`
	QuarterlyReports []map[string]string `json:"quarterlyReports"`
}
