package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalworks/vendormetrics/internal/apperr"
	"github.com/signalworks/vendormetrics/internal/dataset"
)

const testCSV = `vendor,date,universe,feature_x,feature_y,signal_strength,drawdown_flag
AlphaSignals,2020-01-01,Equities,1.0,2.0,0.3,0
AlphaSignals,2020-01-02,Equities,2.0,4.0,0.4,0
AlphaSignals,2020-01-03,Equities,3.0,6.0,0.5,0
BetaFlow,2020-01-01,FX,1.0,5.0,0.8,1
BetaFlow,2020-01-02,FX,2.0,3.0,0.2,0
BetaFlow,2020-01-03,FX,3.0,1.0,0.5,1
GammaQuant,2020-02-01,Macro,4.0,4.0,0.6,0
`

func seededEngine(t *testing.T, csv string) *Engine {
	t.Helper()
	ds, err := dataset.DecodeCSV(strings.NewReader(csv))
	require.NoError(t, err)
	store := dataset.NewStore()
	store.Replace(ds)
	return NewEngine(store)
}

func day(d int) dataset.Date { return dataset.NewDate(2020, time.January, d) }

func TestVendorMetrics_AlphaSignals(t *testing.T) {
	e := seededEngine(t, testCSV)

	m, err := e.VendorMetrics("AlphaSignals", Range{})
	require.NoError(t, err)

	assert.Equal(t, "AlphaSignals", m.Vendor)
	assert.Equal(t, 3, m.RecordCount)
	assert.Equal(t, []string{"Equities"}, m.Universes)
	assert.Equal(t, "2020-01-01", m.StartDate.String())
	assert.Equal(t, "2020-01-03", m.EndDate.String())

	assert.InDelta(t, 0.4, m.SignalStrengthMean, 1e-9)
	assert.InDelta(t, 0.1, m.SignalStrengthStd, 1e-4)
	assert.InDelta(t, 0.3, m.SignalStrengthMin, 1e-9)
	assert.InDelta(t, 0.5, m.SignalStrengthMax, 1e-9)

	assert.Equal(t, 0, m.DrawdownCount)
	assert.Zero(t, m.DrawdownRate)
	assert.Nil(t, m.AvgSignalDuringDrawdown)
	require.NotNil(t, m.AvgSignalOutsideDrawdown)
	assert.InDelta(t, 0.4, *m.AvgSignalOutsideDrawdown, 1e-9)

	// feature_y is exactly 2*feature_x.
	assert.InDelta(t, 1.0, m.FeatureXYCorrelation, 1e-9)

	require.NotNil(t, m.SignalVolatility)
	assert.InDelta(t, 0.25, *m.SignalVolatility, 1e-4)
}

func TestVendorMetrics_SingleRow(t *testing.T) {
	e := seededEngine(t, testCSV)

	m, err := e.VendorMetrics("GammaQuant", Range{})
	require.NoError(t, err)

	assert.Equal(t, 1, m.RecordCount)
	assert.Zero(t, m.SignalStrengthStd)
	assert.Zero(t, m.FeatureXYCorrelation)
	assert.True(t, m.StartDate.Equal(m.EndDate))
}

func TestVendorMetrics_DateWindow(t *testing.T) {
	e := seededEngine(t, testCSV)

	m, err := e.VendorMetrics("AlphaSignals", Range{Start: day(2), End: day(3)})
	require.NoError(t, err)
	assert.Equal(t, 2, m.RecordCount)
	assert.InDelta(t, 0.45, m.SignalStrengthMean, 1e-9)

	// Equal bounds are a valid one-day window.
	m, err = e.VendorMetrics("AlphaSignals", Range{Start: day(2), End: day(2)})
	require.NoError(t, err)
	assert.Equal(t, 1, m.RecordCount)
}

func TestVendorMetrics_Errors(t *testing.T) {
	e := seededEngine(t, testCSV)

	_, err := e.VendorMetrics("OmegaQuant", Range{})
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.CodeVendorNotFound, ae.Code)
	assert.Contains(t, ae.Detail, "AlphaSignals")

	_, err = e.VendorMetrics("AlphaSignals", Range{Start: day(10), End: day(20)})
	assert.Equal(t, apperr.CodeNoDataInRange, apperr.From(err).Code)

	_, err = e.VendorMetrics("AlphaSignals", Range{Start: day(3), End: day(1)})
	assert.Equal(t, apperr.CodeInvalidDateRange, apperr.From(err).Code)
}

func TestVendorMetrics_NotLoaded(t *testing.T) {
	e := NewEngine(dataset.NewStore())
	_, err := e.VendorMetrics("AlphaSignals", Range{})
	assert.Equal(t, apperr.CodeNotLoaded, apperr.From(err).Code)
}

func TestVendorMetrics_ZeroVarianceCorrelation(t *testing.T) {
	csv := "vendor,date,universe,feature_x,feature_y,signal_strength,drawdown_flag\n" +
		"FlatCo,2020-01-01,Equities,1.0,2.0,0.5,0\n" +
		"FlatCo,2020-01-02,Equities,1.0,3.0,0.7,0\n"
	e := seededEngine(t, csv)

	m, err := e.VendorMetrics("FlatCo", Range{})
	require.NoError(t, err)
	// feature_x is constant, so r is reported as 0 by policy.
	assert.Zero(t, m.FeatureXYCorrelation)
}

func TestVendorMetrics_ZeroMeanVolatility(t *testing.T) {
	csv := "vendor,date,universe,feature_x,feature_y,signal_strength,drawdown_flag\n" +
		"ZeroCo,2020-01-01,Equities,1.0,2.0,-0.5,0\n" +
		"ZeroCo,2020-01-02,Equities,2.0,3.0,0.5,0\n"
	e := seededEngine(t, csv)

	m, err := e.VendorMetrics("ZeroCo", Range{})
	require.NoError(t, err)
	assert.Nil(t, m.SignalVolatility)
}

func TestVendorMetrics_Idempotent(t *testing.T) {
	e := seededEngine(t, testCSV)

	a, err := e.VendorMetrics("BetaFlow", Range{})
	require.NoError(t, err)
	b, err := e.VendorMetrics("BetaFlow", Range{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
