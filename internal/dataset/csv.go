package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/signalworks/vendormetrics/internal/apperr"
)

// requiredColumns is the fixed ingestion schema. Column order is free and
// extra columns are ignored.
var requiredColumns = []string{
	"vendor", "date", "universe",
	"feature_x", "feature_y", "signal_strength", "drawdown_flag",
}

// DecodeCSV parses a CSV table into a Dataset. The whole input is validated
// before anything becomes visible: a single bad row rejects the entire load.
func DecodeCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperr.DataFormat("input is empty")
	}
	if err != nil {
		return nil, apperr.DataFormat(fmt.Sprintf("read header: %v", err))
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []Observation
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, apperr.DataFormat(fmt.Sprintf("row %d: %v", line, err))
		}

		obs, err := decodeRow(record, cols, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, obs)
	}

	if len(rows) == 0 {
		return nil, apperr.DataFormat("no data rows")
	}

	return newDataset(rows), nil
}

// columnIndex maps each required column name to its position in the header.
type columnIndex map[string]int

func mapColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.DataFormat("missing required columns: " + strings.Join(missing, ", "))
	}
	return cols, nil
}

// decodeRow coerces one record into an Observation. Nothing is coerced
// silently: every field either conforms or fails the load.
func decodeRow(record []string, cols columnIndex, line int) (Observation, error) {
	field := func(name string) (string, bool) {
		i := cols[name]
		if i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	rowErr := func(format string, args ...any) (Observation, error) {
		return Observation{}, apperr.DataFormat(fmt.Sprintf("row %d: ", line) + fmt.Sprintf(format, args...))
	}

	vendor, ok := field("vendor")
	if !ok || vendor == "" {
		return rowErr("vendor is empty")
	}

	dateStr, _ := field("date")
	date, err := ParseDate(dateStr)
	if err != nil {
		return rowErr("unparseable date %q", dateStr)
	}

	universe, _ := field("universe")

	var obs Observation
	obs.Vendor = vendor
	obs.Date = date
	obs.Universe = universe

	for name, dst := range map[string]*float64{
		"feature_x":       &obs.FeatureX,
		"feature_y":       &obs.FeatureY,
		"signal_strength": &obs.SignalStrength,
	} {
		raw, _ := field(name)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rowErr("non-numeric %s %q", name, raw)
		}
		*dst = v
	}

	flagStr, _ := field("drawdown_flag")
	flag, err := parseDrawdownFlag(flagStr)
	if err != nil {
		return rowErr("invalid drawdown_flag %q", flagStr)
	}
	obs.DrawdownFlag = flag

	return obs, nil
}

// parseDrawdownFlag accepts 0/1 and true/false (case-insensitive).
func parseDrawdownFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	}
	return false, fmt.Errorf("not in {0,1,true,false}")
}
