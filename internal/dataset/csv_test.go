package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalworks/vendormetrics/internal/apperr"
)

const sampleCSV = `vendor,date,universe,feature_x,feature_y,signal_strength,drawdown_flag
BetaFlow,2020-01-02,FX,0.5,0.1,0.6,1
AlphaSignals,2020-01-01,Equities,1.2,0.4,0.3,0
AlphaSignals,2020-01-02,Equities,1.1,0.5,0.4,false
AlphaSignals,2020-01-03,Equities,1.3,0.6,0.5,true
`

func TestDecodeCSV(t *testing.T) {
	ds, err := DecodeCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, []string{"AlphaSignals", "BetaFlow"}, ds.Vendors())
	assert.Equal(t, []string{"Equities", "FX"}, ds.Universes())

	min, max := ds.DateRange()
	assert.Equal(t, "2020-01-01", min.String())
	assert.Equal(t, "2020-01-03", max.String())

	// Rows are sorted by vendor then date regardless of input order.
	rows := ds.Rows()
	assert.Equal(t, "AlphaSignals", rows[0].Vendor)
	assert.Equal(t, "2020-01-01", rows[0].Date.String())
	assert.Equal(t, "BetaFlow", rows[3].Vendor)

	assert.False(t, rows[0].DrawdownFlag)
	assert.True(t, rows[2].DrawdownFlag)
	assert.InDelta(t, 1.2, rows[0].FeatureX, 1e-9)
}

func TestDecodeCSV_ColumnOrderFree(t *testing.T) {
	csv := "date,vendor,drawdown_flag,signal_strength,feature_y,feature_x,universe,extra\n" +
		"2020-01-01,AlphaSignals,0,0.3,0.4,1.2,Equities,ignored\n"
	ds, err := DecodeCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.InDelta(t, 0.3, ds.Rows()[0].SignalStrength, 1e-9)
}

func TestDecodeCSV_MissingColumns(t *testing.T) {
	csv := "vendor,date,universe,feature_x\nAlphaSignals,2020-01-01,Equities,1.0\n"
	_, err := DecodeCSV(strings.NewReader(csv))
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.CodeDataFormat, ae.Code)
	assert.Contains(t, ae.Detail, "feature_y")
	assert.Contains(t, ae.Detail, "drawdown_flag")
}

func TestDecodeCSV_BadRows(t *testing.T) {
	header := "vendor,date,universe,feature_x,feature_y,signal_strength,drawdown_flag\n"

	cases := []struct {
		name   string
		row    string
		detail string
	}{
		{"bad float", "AlphaSignals,2020-01-01,Equities,abc,0.4,0.3,0", "non-numeric feature_x"},
		{"bad date", "AlphaSignals,01/02/2020,Equities,1.2,0.4,0.3,0", "unparseable date"},
		{"bad flag", "AlphaSignals,2020-01-01,Equities,1.2,0.4,0.3,2", "invalid drawdown_flag"},
		{"empty vendor", ",2020-01-01,Equities,1.2,0.4,0.3,0", "vendor is empty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCSV(strings.NewReader(header + tc.row + "\n"))
			require.Error(t, err)
			ae := apperr.From(err)
			assert.Equal(t, apperr.CodeDataFormat, ae.Code)
			assert.Contains(t, ae.Detail, "row 2")
			assert.Contains(t, ae.Detail, tc.detail)
		})
	}
}

func TestDecodeCSV_Empty(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader(""))
	assert.Equal(t, apperr.CodeDataFormat, apperr.From(err).Code)

	_, err = DecodeCSV(strings.NewReader("vendor,date,universe,feature_x,feature_y,signal_strength,drawdown_flag\n"))
	require.Error(t, err)
	assert.Contains(t, apperr.From(err).Detail, "no data rows")
}

func TestDecodeCSV_DuplicatePairsTolerated(t *testing.T) {
	csv := "vendor,date,universe,feature_x,feature_y,signal_strength,drawdown_flag\n" +
		"AlphaSignals,2020-01-01,Equities,1.0,2.0,0.3,0\n" +
		"AlphaSignals,2020-01-01,Equities,1.5,2.5,0.5,1\n"
	ds, err := DecodeCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestHasVendor(t *testing.T) {
	ds, err := DecodeCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.True(t, ds.HasVendor("AlphaSignals"))
	assert.False(t, ds.HasVendor("alphasignals")) // exact, case-sensitive
	assert.False(t, ds.HasVendor("OmegaQuant"))
}
