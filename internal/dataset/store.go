package dataset

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalworks/vendormetrics/internal/apperr"
)

// Store owns the current dataset. Replacement is a single atomic pointer
// swap, so readers in flight keep the snapshot they started with and never
// observe a mix of old and new rows.
type Store struct {
	current atomic.Pointer[Dataset]
}

// NewStore creates an empty store. Snapshot fails until the first load.
func NewStore() *Store {
	return &Store{}
}

// LoadFile reads and decodes a tabular file, then swaps it in. The decoder
// is chosen by extension (.csv or .xlsx).
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	ds, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return err
	}

	s.Replace(ds)
	return nil
}

// Decode parses tabular input using the decoder for the given file
// extension.
func Decode(r io.Reader, ext string) (*Dataset, error) {
	switch strings.ToLower(ext) {
	case ".csv", "csv", "":
		return DecodeCSV(r)
	case ".xlsx", "xlsx":
		return DecodeXLSX(r)
	}
	return nil, apperr.DataFormat("unsupported file type " + ext)
}

// Replace atomically swaps in a fully built dataset.
func (s *Store) Replace(ds *Dataset) {
	s.current.Store(ds)
	min, max := ds.DateRange()
	zap.L().Info("dataset replaced",
		zap.Int("records", ds.Len()),
		zap.Int("vendors", len(ds.Vendors())),
		zap.Int("universes", len(ds.Universes())),
		zap.String("start_date", min.String()),
		zap.String("end_date", max.String()),
	)
}

// Snapshot returns the current dataset. The returned value is immutable
// and safe for concurrent readers.
func (s *Store) Snapshot() (*Dataset, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, apperr.NotLoaded()
	}
	return ds, nil
}

// Info returns metadata for the current dataset.
func (s *Store) Info() (Info, error) {
	ds, err := s.Snapshot()
	if err != nil {
		return Info{}, err
	}
	return ds.Info(), nil
}
