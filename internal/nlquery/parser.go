package nlquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/signalworks/vendormetrics/internal/apperr"
	"github.com/signalworks/vendormetrics/internal/dataset"
	"github.com/signalworks/vendormetrics/pkg/anthropic"
)

// systemPrompt is the fixed instruction set for intent extraction. The
// model must answer with a single JSON object matching the wire shape
// below; anything else is rejected, never guessed around.
const systemPrompt = `You are a query parser for a vendor performance metrics system.
Parse the user's question and respond with ONLY a JSON object, no other text:
{"intent": "...", "vendor": string or null, "start_date": "YYYY-MM-DD" or null, "end_date": "YYYY-MM-DD" or null}

intent must be exactly one of:
- vendor_metrics: metrics for ONE specific vendor mentioned by name
- period_metrics: aggregated metrics for a time period (dates or months mentioned, no single vendor focus)
- compare_vendors: compare or rank vendors, which vendor is best/worst/most stable
- drawdown_analysis: anything about drawdowns, stress events, or signal behavior during them
- list_vendors: list or enumerate the available vendors
- unsupported: the question is not about vendor performance metrics

vendor must be an exact name from the available vendors, or null if none is mentioned.
Available vendors: %s

For a single-month question like "metrics for February 2020", set start_date to the first day and end_date to the last day of that month.`

// Parser extracts a structured query from free text. Implementations must
// be deterministic for identical input.
type Parser interface {
	Parse(ctx context.Context, question string) (*ParsedQuery, error)
}

// ParserOpts configures the LLM-backed parser.
type ParserOpts struct {
	Model     string
	MaxTokens int64
	Timeout   time.Duration
	// QueriesPerSecond bounds outbound model calls; 0 disables limiting.
	QueriesPerSecond float64
}

// LLMParser implements Parser with a zero-temperature Anthropic call.
type LLMParser struct {
	client    anthropic.Client
	store     *dataset.Store
	model     string
	maxTokens int64
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewLLMParser creates a parser that names the store's current vendors in
// its prompt.
func NewLLMParser(client anthropic.Client, store *dataset.Store, opts ParserOpts) *LLMParser {
	p := &LLMParser{
		client:    client,
		store:     store,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		timeout:   opts.Timeout,
	}
	if p.maxTokens == 0 {
		p.maxTokens = 256
	}
	if p.timeout == 0 {
		p.timeout = 15 * time.Second
	}
	if opts.QueriesPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(opts.QueriesPerSecond), 1)
	}
	return p
}

// parseWire is the constrained output shape the model must produce.
type parseWire struct {
	Intent    string  `json:"intent"`
	Vendor    *string `json:"vendor"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// Parse sends the question to the model with a bounded timeout and decodes
// the constrained JSON answer. A timeout surfaces as QUERY_TIMEOUT, every
// other failure (network, empty response, schema violation, unknown
// intent) as QUERY_PARSE. There is no fallback intent and no retry.
func (p *LLMParser) Parse(ctx context.Context, question string) (*ParsedQuery, error) {
	ds, err := p.store.Snapshot()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, classifyCallErr(err)
		}
	}

	temperature := 0.0 // identical question text must yield identical structure
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		System:      []anthropic.SystemBlock{{Text: fmt.Sprintf(systemPrompt, strings.Join(ds.Vendors(), ", "))}},
		Messages:    []anthropic.Message{{Role: "user", Content: question}},
		Temperature: &temperature,
	})
	if err != nil {
		return nil, classifyCallErr(err)
	}

	resp.Usage.LogCost(p.model, "intent_extraction")

	parsed, err := decodeWire(resp.Text(), question)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("question parsed",
		zap.String("intent", string(parsed.Intent)),
		zap.Bool("has_vendor", parsed.Entities.Vendor != nil),
	)
	return parsed, nil
}

// classifyCallErr maps a model-call failure to the domain taxonomy.
func classifyCallErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.QueryTimeout("language model call exceeded its deadline")
	}
	return apperr.QueryParse(fmt.Sprintf("language model call failed: %v", err))
}

// decodeWire validates the model output against the constrained shape.
func decodeWire(text, question string) (*ParsedQuery, error) {
	if text == "" {
		return nil, apperr.QueryParse("language model returned no text")
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, apperr.QueryParse("response contains no JSON object")
	}

	var wire parseWire
	if err := json.Unmarshal([]byte(text[start:end+1]), &wire); err != nil {
		return nil, apperr.QueryParse(fmt.Sprintf("malformed JSON in response: %v", err))
	}

	intent, ok := ParseIntent(wire.Intent)
	if !ok {
		return nil, apperr.QueryParse(fmt.Sprintf("intent %q is not recognized", wire.Intent))
	}

	parsed := &ParsedQuery{Intent: intent, Question: question}
	if wire.Vendor != nil && *wire.Vendor != "" {
		parsed.Entities.Vendor = wire.Vendor
	}

	var err error
	if parsed.Entities.StartDate, err = wireDate(wire.StartDate, "start_date"); err != nil {
		return nil, err
	}
	if parsed.Entities.EndDate, err = wireDate(wire.EndDate, "end_date"); err != nil {
		return nil, err
	}

	return parsed, nil
}

func wireDate(s *string, field string) (*dataset.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := dataset.ParseDate(*s)
	if err != nil {
		return nil, apperr.QueryParse(fmt.Sprintf("%s %q is not a valid date", field, *s))
	}
	return &d, nil
}
