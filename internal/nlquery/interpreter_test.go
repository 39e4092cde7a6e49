package nlquery

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalworks/vendormetrics/internal/apperr"
	"github.com/signalworks/vendormetrics/internal/dataset"
	"github.com/signalworks/vendormetrics/internal/metrics"
)

const interpreterCSV = `vendor,date,universe,feature_x,feature_y,signal_strength,drawdown_flag
AlphaSignals,2020-01-01,Equities,1.0,2.0,0.3,0
AlphaSignals,2020-01-02,Equities,2.0,4.0,0.5,1
BetaFlow,2020-01-01,FX,0.5,0.1,0.6,0
BetaFlow,2020-01-02,FX,0.7,0.3,0.8,0
`

// stubParser returns a fixed parse result, bypassing the language model.
type stubParser struct {
	parsed *ParsedQuery
	err    error
}

func (s *stubParser) Parse(_ context.Context, question string) (*ParsedQuery, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *s.parsed
	out.Question = question
	return &out, nil
}

func newInterpreter(t *testing.T, parser Parser) *Interpreter {
	t.Helper()
	ds, err := dataset.DecodeCSV(strings.NewReader(interpreterCSV))
	require.NoError(t, err)
	store := dataset.NewStore()
	store.Replace(ds)
	return NewInterpreter(parser, metrics.NewEngine(store), store)
}

func strp(s string) *string { return &s }

func TestInterpreter_VendorMetrics(t *testing.T) {
	parser := &stubParser{parsed: &ParsedQuery{
		Intent:   IntentVendorMetrics,
		Entities: Entities{Vendor: strp("AlphaSignals")},
	}}
	it := newInterpreter(t, parser)

	env, err := it.Answer(context.Background(), "How is AlphaSignals performing?")
	require.NoError(t, err)

	assert.NotEmpty(t, env.ID)
	assert.Equal(t, IntentVendorMetrics, env.DetectedIntent)
	assert.Equal(t, "How is AlphaSignals performing?", env.Question)

	m, ok := env.Result.(*metrics.VendorMetrics)
	require.True(t, ok)
	assert.Equal(t, "AlphaSignals", m.Vendor)
	assert.Equal(t, 2, m.RecordCount)
	assert.Contains(t, env.Explanation, "AlphaSignals")
}

func TestInterpreter_CompareVendors(t *testing.T) {
	parser := &stubParser{parsed: &ParsedQuery{Intent: IntentCompareVendors}}
	it := newInterpreter(t, parser)

	env, err := it.Answer(context.Background(), "Compare all vendors")
	require.NoError(t, err)

	assert.Equal(t, IntentCompareVendors, env.DetectedIntent)
	cmp, ok := env.Result.(*metrics.Comparison)
	require.True(t, ok)
	assert.Equal(t, "BetaFlow", cmp.BestAvgSignal)
	assert.Len(t, cmp.Vendors, 2)
}

func TestInterpreter_DrawdownAnalysis(t *testing.T) {
	parser := &stubParser{parsed: &ParsedQuery{
		Intent:   IntentDrawdownAnalysis,
		Entities: Entities{Vendor: strp("AlphaSignals")},
	}}
	it := newInterpreter(t, parser)

	env, err := it.Answer(context.Background(), "Show drawdowns for AlphaSignals")
	require.NoError(t, err)

	assert.Equal(t, IntentDrawdownAnalysis, env.DetectedIntent)
	require.NotNil(t, env.Entities.Vendor)
	assert.Equal(t, "AlphaSignals", *env.Entities.Vendor)
	report, ok := env.Result.(*metrics.DrawdownReport)
	require.True(t, ok)
	assert.Equal(t, 1, report.TotalDrawdownEvents)
}

func TestInterpreter_ListVendors(t *testing.T) {
	parser := &stubParser{parsed: &ParsedQuery{Intent: IntentListVendors}}
	it := newInterpreter(t, parser)

	env, err := it.Answer(context.Background(), "What vendors do we have?")
	require.NoError(t, err)

	list, ok := env.Result.(VendorList)
	require.True(t, ok)
	assert.Equal(t, []string{"AlphaSignals", "BetaFlow"}, list.Vendors)
	assert.Equal(t, 2, list.Count)
}

func TestInterpreter_MissingVendor(t *testing.T) {
	parser := &stubParser{parsed: &ParsedQuery{Intent: IntentVendorMetrics}}
	it := newInterpreter(t, parser)

	_, err := it.Answer(context.Background(), "How is it performing?")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUnsupportedQuery, apperr.From(err).Code)
}

func TestInterpreter_UnknownVendorPropagates(t *testing.T) {
	parser := &stubParser{parsed: &ParsedQuery{
		Intent:   IntentVendorMetrics,
		Entities: Entities{Vendor: strp("GammaQuant")},
	}}
	it := newInterpreter(t, parser)

	_, err := it.Answer(context.Background(), "How is GammaQuant doing?")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeVendorNotFound, apperr.From(err).Code)
}

func TestInterpreter_UnsupportedIntent(t *testing.T) {
	parser := &stubParser{parsed: &ParsedQuery{Intent: IntentUnsupported}}
	it := newInterpreter(t, parser)

	_, err := it.Answer(context.Background(), "Write me a poem")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUnsupportedQuery, apperr.From(err).Code)
}

func TestInterpreter_EmptyQuestion(t *testing.T) {
	it := newInterpreter(t, &stubParser{parsed: &ParsedQuery{Intent: IntentListVendors}})

	_, err := it.Answer(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.From(err).Code)
}

func TestInterpreter_ParserErrorPropagates(t *testing.T) {
	it := newInterpreter(t, &stubParser{err: apperr.QueryParse("no JSON object in response")})

	env, err := it.Answer(context.Background(), "Compare all vendors")
	require.Error(t, err)
	assert.Nil(t, env)
	assert.Equal(t, apperr.CodeQueryParse, apperr.From(err).Code)
}

func TestSupportedPatterns(t *testing.T) {
	patterns := SupportedPatterns()
	require.NotEmpty(t, patterns)

	seen := map[Intent]bool{}
	for _, p := range patterns {
		_, ok := ParseIntent(string(p.Intent))
		assert.True(t, ok, "pattern %q has unknown intent", p.Intent)
		assert.NotEmpty(t, p.Description)
		assert.NotEmpty(t, p.Examples)
		seen[p.Intent] = true
	}
	assert.True(t, seen[IntentVendorMetrics])
	assert.True(t, seen[IntentCompareVendors])
}
