package nlquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/signalworks/vendormetrics/internal/apperr"
	"github.com/signalworks/vendormetrics/internal/dataset"
	"github.com/signalworks/vendormetrics/internal/metrics"
)

// Envelope wraps a query result with the original question and detected
// intent. The structured result plus intent label is the response
// contract; no prose answer is generated.
type Envelope struct {
	ID             string   `json:"id"`
	Question       string   `json:"question"`
	DetectedIntent Intent   `json:"detected_intent"`
	Entities       Entities `json:"entities"`
	Result         any      `json:"result"`
	Explanation    string   `json:"explanation"`
}

// VendorList is the result payload for list_vendors questions.
type VendorList struct {
	Vendors []string `json:"vendors"`
	Count   int      `json:"count"`
}

// Interpreter answers natural-language questions. It holds no state
// between requests; each question is parsed and dispatched independently.
type Interpreter struct {
	parser Parser
	engine *metrics.Engine
	store  *dataset.Store
}

// NewInterpreter wires a parser to the metrics engine.
func NewInterpreter(parser Parser, engine *metrics.Engine, store *dataset.Store) *Interpreter {
	return &Interpreter{parser: parser, engine: engine, store: store}
}

// Answer parses the question and runs the matching metrics operation.
// Engine errors propagate untouched; a recognized-but-unhandleable intent
// or missing required entity fails with UNSUPPORTED_QUERY rather than
// guessing.
func (i *Interpreter) Answer(ctx context.Context, question string) (*Envelope, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperr.Validation("question is required", "")
	}

	parsed, err := i.parser.Parse(ctx, question)
	if err != nil {
		return nil, err
	}

	result, explanation, err := i.dispatch(ctx, parsed)
	if err != nil {
		return nil, err
	}

	env := &Envelope{
		ID:             uuid.NewString(),
		Question:       question,
		DetectedIntent: parsed.Intent,
		Entities:       parsed.Entities,
		Result:         result,
		Explanation:    explanation,
	}

	zap.L().Info("question answered",
		zap.String("query_id", env.ID),
		zap.String("intent", string(parsed.Intent)),
	)
	return env, nil
}

func (i *Interpreter) dispatch(ctx context.Context, parsed *ParsedQuery) (any, string, error) {
	r := rangeFrom(parsed.Entities)

	switch parsed.Intent {
	case IntentVendorMetrics:
		if parsed.Entities.Vendor == nil {
			return nil, "", apperr.UnsupportedQuery("a vendor name is required but none was mentioned")
		}
		m, err := i.engine.VendorMetrics(*parsed.Entities.Vendor, r)
		if err != nil {
			return nil, "", err
		}
		return m, fmt.Sprintf("metrics for %s over %d records", m.Vendor, m.RecordCount), nil

	case IntentPeriodMetrics:
		pm, err := i.engine.PeriodMetrics(r, "")
		if err != nil {
			return nil, "", err
		}
		return pm, fmt.Sprintf("aggregated metrics from %s to %s across %d vendors",
			pm.StartDate, pm.EndDate, pm.VendorCount), nil

	case IntentCompareVendors:
		cmp, err := i.engine.Compare(ctx, nil)
		if err != nil {
			return nil, "", err
		}
		return cmp, fmt.Sprintf("best signal: %s, most stable: %s", cmp.BestAvgSignal, cmp.MostStable), nil

	case IntentDrawdownAnalysis:
		vendor := ""
		scope := "across all vendors"
		if parsed.Entities.Vendor != nil {
			vendor = *parsed.Entities.Vendor
			scope = "for " + vendor
		}
		report, err := i.engine.DrawdownAnalysis(vendor, r)
		if err != nil {
			return nil, "", err
		}
		return report, fmt.Sprintf("drawdown analysis %s: %d events", scope, report.TotalDrawdownEvents), nil

	case IntentListVendors:
		info, err := i.store.Info()
		if err != nil {
			return nil, "", err
		}
		list := VendorList{Vendors: info.Vendors, Count: len(info.Vendors)}
		return list, fmt.Sprintf("found %d vendors", list.Count), nil
	}

	return nil, "", apperr.UnsupportedQuery(
		"the question was not recognized as a vendor metrics query; see the supported patterns")
}

func rangeFrom(e Entities) metrics.Range {
	var r metrics.Range
	if e.StartDate != nil {
		r.Start = *e.StartDate
	}
	if e.EndDate != nil {
		r.End = *e.EndDate
	}
	return r
}
