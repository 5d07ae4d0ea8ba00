package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/qualify"
)

func (s *apiServer) handleGetLead(w http.ResponseWriter, r *http.Request) {
	cnpj := chi.URLParam(r, "cnpj")
	lead, err := s.sink.FindByCNPJ(r.Context(), cnpj)
	if err != nil {
		serverError(w, err)
		return
	}
	if lead == nil {
		writeError(w, http.StatusNotFound, "Lead not found")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *apiServer) handleLeadStats(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		writeError(w, http.StatusServiceUnavailable, "lead source is not configured")
		return
	}

	cnae := chi.URLParam(r, "cnae")
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}

	stats, err := s.source.Stats(r.Context(), cnae, days)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleCaptureTrigger kicks off one capture cycle in the background.
func (s *apiServer) handleCaptureTrigger(w http.ResponseWriter, r *http.Request) {
	if s.captureJob == nil {
		writeError(w, http.StatusServiceUnavailable, "lead source is not configured")
		return
	}

	go func() {
		if _, err := s.captureJob.Run(context.Background()); err != nil {
			zap.L().Error("triggered capture failed", zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Lead capture job triggered",
		"status":  "processing",
	})
}

func (s *apiServer) handleQualifyLead(w http.ResponseWriter, r *http.Request) {
	var lead model.Lead
	if !decodeBody(w, r, &lead) {
		return
	}
	if lead.CNPJ == "" {
		writeError(w, http.StatusBadRequest, "cnpj is required")
		return
	}

	result := s.qualifier.Qualify(lead)
	writeJSON(w, http.StatusOK, qualify.ScoredLead{Lead: lead, Qualification: result})
}

// handleUpdateCriteria merges a partial criteria update into the running
// qualifier and returns the effective criteria.
func (s *apiServer) handleUpdateCriteria(w http.ResponseWriter, r *http.Request) {
	var patch qualify.CriteriaPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	s.qualifier.ReplaceCriteria(patch)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Criteria updated",
		"criteria": s.qualifier.Criteria(),
	})
}
