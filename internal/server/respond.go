package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/signalworks/vendormetrics/internal/apperr"
)

type errorBody struct {
	Error     apperr.Code `json:"error"`
	Message   string      `json:"message"`
	Detail    string      `json:"detail,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

// writeError maps any error onto the taxonomy and serializes it. Internal
// errors are logged with the request ID; their detail is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	reqID := middleware.GetReqID(r.Context())

	if ae.Code == apperr.CodeInternal {
		zap.L().Error("internal error",
			zap.String("request_id", reqID),
			zap.Error(err),
		)
	}

	writeJSON(w, ae.Status, errorBody{
		Error:     ae.Code,
		Message:   ae.Message,
		Detail:    ae.Detail,
		RequestID: reqID,
	})
}
