// Package nlquery translates free-text questions into structured metric
// queries via a language-model call with a constrained output shape, then
// dispatches them against the metrics engine.
package nlquery

import (
	"github.com/signalworks/vendormetrics/internal/dataset"
)

// Intent is the classified purpose of a question, drawn from a closed set.
type Intent string

const (
	IntentVendorMetrics    Intent = "vendor_metrics"
	IntentPeriodMetrics    Intent = "period_metrics"
	IntentCompareVendors   Intent = "compare_vendors"
	IntentDrawdownAnalysis Intent = "drawdown_analysis"
	IntentListVendors      Intent = "list_vendors"
	IntentUnsupported      Intent = "unsupported"
)

// ParseIntent maps a wire string to an Intent, reporting whether it is one
// of the recognized values. The model's output is validated against this
// set rather than trusted.
func ParseIntent(s string) (Intent, bool) {
	switch Intent(s) {
	case IntentVendorMetrics, IntentPeriodMetrics, IntentCompareVendors,
		IntentDrawdownAnalysis, IntentListVendors, IntentUnsupported:
		return Intent(s), true
	}
	return IntentUnsupported, false
}

// Entities are the extracted query parameters. Nil means "not mentioned".
type Entities struct {
	Vendor    *string       `json:"vendor"`
	StartDate *dataset.Date `json:"start_date"`
	EndDate   *dataset.Date `json:"end_date"`
}

// ParsedQuery is the ephemeral result of intent extraction. It is produced
// per request and never stored.
type ParsedQuery struct {
	Intent   Intent   `json:"intent"`
	Entities Entities `json:"entities"`
	Question string   `json:"question"`
}
