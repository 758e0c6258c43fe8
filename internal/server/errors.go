package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

var statusByCode = map[errors.Code]int{
	errors.ErrCodeInvalidInput:    http.StatusBadRequest,
	errors.ErrCodeInvalidFormat:   http.StatusBadRequest,
	errors.ErrCodeInvalidID:       http.StatusBadRequest,
	errors.ErrCodeNoStakeholders:  http.StatusUnprocessableEntity,
	errors.ErrCodeNotFound:        http.StatusNotFound,
	errors.ErrCodeSessionNotFound: http.StatusNotFound,
	errors.ErrCodeFileNotFound:    http.StatusNotFound,
	errors.ErrCodeSuperseded:      http.StatusConflict,
	errors.ErrCodeExtraction:      http.StatusBadGateway,
	errors.ErrCodeUnsupported:     http.StatusNotImplemented,
}

// StatusFor maps an error to an HTTP status. Errors without a code, and
// structural violations, are internal errors.
func StatusFor(err error) int {
	if status, ok := statusByCode[errors.GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Code: errors.GetCode(err), Message: errors.UserMessage(err)}
	if resp.Code == "" {
		resp.Code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		if errors.GetCode(err) == "" {
			resp.Message = "internal error"
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
