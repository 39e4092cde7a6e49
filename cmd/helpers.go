package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/signalworks/vendormetrics/internal/apperr"
	"github.com/signalworks/vendormetrics/internal/dataset"
	"github.com/signalworks/vendormetrics/internal/metrics"
	"github.com/signalworks/vendormetrics/internal/nlquery"
	"github.com/signalworks/vendormetrics/pkg/anthropic"
)

// dataPath overrides the configured CSV path when the --data flag is set.
var dataPath string

// loadedStore loads the dataset from the --data flag or the configured
// path and returns a ready store plus engine.
func loadedStore() (*dataset.Store, *metrics.Engine, error) {
	path := dataPath
	if path == "" {
		path = cfg.Data.CSVPath
	}

	store := dataset.NewStore()
	if err := store.LoadFile(path); err != nil {
		return nil, nil, err
	}
	return store, metrics.NewEngine(store), nil
}

// buildInterpreter wires the Claude-backed parser. Requires anthropic.key.
func buildInterpreter(store *dataset.Store, engine *metrics.Engine) (*nlquery.Interpreter, error) {
	if err := cfg.Validate("query"); err != nil {
		return nil, err
	}

	client := anthropic.NewClient(cfg.Anthropic.Key)
	parser := nlquery.NewLLMParser(client, store, nlquery.ParserOpts{
		Model:            cfg.Anthropic.Model,
		MaxTokens:        cfg.Anthropic.MaxTokens,
		Timeout:          cfg.Anthropic.Timeout(),
		QueriesPerSecond: cfg.Anthropic.QueriesPerSecond,
	})
	return nlquery.NewInterpreter(parser, engine, store), nil
}

// printJSON writes v as indented JSON, the output format of every
// read command.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode output")
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// parseRange builds a metrics range from optional flag values.
func parseRange(start, end string) (metrics.Range, error) {
	var r metrics.Range
	if start != "" {
		d, err := dataset.ParseDate(start)
		if err != nil {
			return r, apperr.Validation("invalid --start date", err.Error())
		}
		r.Start = d
	}
	if end != "" {
		d, err := dataset.ParseDate(end)
		if err != nil {
			return r, apperr.Validation("invalid --end date", err.Error())
		}
		r.End = d
	}
	return r, nil
}
