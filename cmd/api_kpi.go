package main

import (
	"net/http"
	"strconv"
)

func (s *apiServer) handleKPIMetrics(w http.ResponseWriter, r *http.Request) {
	overview, err := s.kpi.Metrics(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *apiServer) handleKPITrends(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 || days > 365 {
		days = 30
	}
	points, err := s.kpi.Trends(r.Context(), days)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "trends": points})
}

func (s *apiServer) handleKPIPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.kpi.PlanDistribution(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}
