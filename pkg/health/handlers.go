package health

import (
	"encoding/json"
	"net/http"
)

// ReadinessHandler serves the readiness endpoint. Readiness is binary:
// degraded still serves traffic, unhealthy does not.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := c.Readiness()
		writeResponse(w, response, response.Status != StatusUnhealthy)
	}
}

// LivenessHandler serves the liveness endpoint.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := c.Liveness()
		writeResponse(w, response, response.Status == StatusHealthy)
	}
}

func writeResponse(w http.ResponseWriter, response Response, up bool) {
	w.Header().Set("Content-Type", "application/json")
	if up {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}
