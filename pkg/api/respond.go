package api

import (
	"encoding/json"
	"net/http"

	"github.com/dd0wney/infragraph/pkg/logging"
	"github.com/dd0wney/infragraph/pkg/query"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding response failed", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondResult writes the engine's result envelope with the HTTP status
// implied by its reason code. An absent path or owner is a successful
// query with a negative answer, so those stay 200 and the envelope's
// reason is the signal.
func (s *Server) respondResult(w http.ResponseWriter, status query.Status, result any) {
	s.respondJSON(w, statusCode(status.Reason), result)
}

func statusCode(reason query.Reason) int {
	switch reason {
	case query.ReasonOK, query.ReasonNoPath, query.ReasonNoOwner:
		return http.StatusOK
	case query.ReasonNotFound:
		return http.StatusNotFound
	case query.ReasonInvalidKind, query.ReasonInvalidType:
		return http.StatusBadRequest
	case query.ReasonStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
