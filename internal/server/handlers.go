package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/signalworks/vendormetrics/internal/apperr"
	"github.com/signalworks/vendormetrics/internal/dataset"
	"github.com/signalworks/vendormetrics/internal/metrics"
	"github.com/signalworks/vendormetrics/internal/nlquery"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if _, err := s.store.Snapshot(); err != nil {
		status = "no_dataset"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.Info()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleUpload replaces the active dataset from a multipart file upload.
// The file is decoded and validated in full before the swap; a bad file
// leaves the previous dataset untouched.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Data.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, apperr.FileTooLarge(s.cfg.Data.MaxUploadBytes))
			return
		}
		writeError(w, r, apperr.Validation("a multipart \"file\" field is required", err.Error()))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	ds, err := dataset.Decode(file, ext)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.store.Replace(ds)

	uploadID := uuid.NewString()
	zap.L().Info("dataset uploaded",
		zap.String("upload_id", uploadID),
		zap.String("filename", header.Filename),
		zap.Int("rows", ds.Len()),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"upload_id": uploadID,
		"filename":  header.Filename,
		"info":      ds.Info(),
	})
}

func (s *Server) handleVendorMetrics(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m, err := s.engine.VendorMetrics(chi.URLParam(r, "vendor"), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handlePeriodMetrics(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pm, err := s.engine.PeriodMetrics(rng, r.URL.Query().Get("group_by"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pm)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var vendors []string
	if raw := r.URL.Query().Get("vendors"); raw != "" {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				vendors = append(vendors, v)
			}
		}
	}

	cmp, err := s.engine.Compare(r.Context(), vendors)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleDrawdowns(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := s.engine.DrawdownAnalysis(r.URL.Query().Get("vendor"), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if s.interpreter == nil {
		writeError(w, r, apperr.UnsupportedQuery(
			"natural-language queries are disabled; configure anthropic.key"))
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.Validation("invalid request body", err.Error()))
		return
	}

	env, err := s.interpreter.Answer(r.Context(), req.Question)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleSupportedPatterns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"patterns": nlquery.SupportedPatterns(),
	})
}

// rangeFromQuery reads the optional start_date/end_date query parameters.
// Absent parameters leave the bound open.
func rangeFromQuery(r *http.Request) (metrics.Range, error) {
	var rng metrics.Range
	q := r.URL.Query()

	if raw := q.Get("start_date"); raw != "" {
		d, err := dataset.ParseDate(raw)
		if err != nil {
			return rng, apperr.Validation("invalid start_date", err.Error())
		}
		rng.Start = d
	}
	if raw := q.Get("end_date"); raw != "" {
		d, err := dataset.ParseDate(raw)
		if err != nil {
			return rng, apperr.Validation("invalid end_date", err.Error())
		}
		rng.End = d
	}
	return rng, nil
}
