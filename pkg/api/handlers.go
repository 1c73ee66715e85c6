package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dd0wney/infragraph/pkg/intent"
	"github.com/dd0wney/infragraph/pkg/validation"
)

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := validation.ValidateNodeID("id", id); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := s.engine.GetNode(id)
	s.respondResult(w, result.Status, result)
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodeType := r.URL.Query().Get("type")
	if nodeType == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter 'type' is required")
		return
	}
	result := s.engine.ListByType(nodeType)
	s.respondResult(w, result.Status, result)
}

func (s *Server) handleUpstream(w http.ResponseWriter, r *http.Request) {
	s.handleWalk(w, r, true)
}

func (s *Server) handleDownstream(w http.ResponseWriter, r *http.Request) {
	s.handleWalk(w, r, false)
}

func (s *Server) handleWalk(w http.ResponseWriter, r *http.Request, upstream bool) {
	req := &validation.WalkRequest{
		ID:   r.PathValue("id"),
		Kind: r.URL.Query().Get("kind"),
	}
	if raw := r.URL.Query().Get("depth"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "depth: not a number")
			return
		}
		req.Depth = depth
	}
	if err := validation.ValidateWalkRequest(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if upstream {
		result := s.engine.Upstream(req.ID, req.Kind, req.Depth)
		s.respondResult(w, result.Status, result)
		return
	}
	result := s.engine.Downstream(req.ID, req.Kind, req.Depth)
	s.respondResult(w, result.Status, result)
}

func (s *Server) handleOwner(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := validation.ValidateNodeID("id", id); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := s.engine.Owner(id)
	s.respondResult(w, result.Status, result)
}

func (s *Server) handleBlastRadius(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := validation.ValidateNodeID("id", id); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := s.engine.BlastRadius(id)
	s.respondResult(w, result.Status, result)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	req := &validation.PathRequest{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
		Kind: r.URL.Query().Get("kind"),
	}
	if err := validation.ValidatePathRequest(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := s.engine.Path(req.From, req.To, req.Kind)
	s.respondResult(w, result.Status, result)
}

func (s *Server) handleTeamResources(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := validation.ValidateNodeID("id", id); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := s.engine.ResourcesOwnedBy(id)
	s.respondResult(w, result.Status, result)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Statistics()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"nodes":         stats.NodeCount,
		"edges":         stats.EdgeCount,
		"total_merges":  stats.TotalMerges,
		"last_merge_at": stats.LastMergeAt,
	})
}

// chatRequest is the /chat body: one question plus optional prior turns.
type chatRequest struct {
	Message string        `json:"message"`
	History []intent.Turn `json:"history,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.responder == nil {
		s.respondError(w, http.StatusNotImplemented, "chat is not enabled")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateChatRequest(&validation.ChatRequest{Message: req.Message}); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply := s.responder.Answer(r.Context(), req.Message, req.History)
	s.respondJSON(w, http.StatusOK, reply)
}
