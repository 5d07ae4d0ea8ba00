package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *apiServer) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleCfg, err := s.schedule.Config(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}
	open, err := s.schedule.IsBusinessHours(r.Context(), time.Now())
	if err != nil {
		serverError(w, err)
		return
	}
	text, err := s.schedule.AvailabilityText(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"config":            scheduleCfg,
		"open_now":          open,
		"availability_text": text,
	})
}

func (s *apiServer) handleNextSlot(w http.ResponseWriter, r *http.Request) {
	from := time.Now()
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
		from = parsed
	}

	slot, err := s.schedule.NextAvailableSlot(r.Context(), from)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"next_slot": slot.Format(time.RFC3339),
	})
}

func (s *apiServer) handleSetHours(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 0 || day > 6 {
		writeError(w, http.StatusBadRequest, "day must be 0 (Sunday) through 6 (Saturday)")
		return
	}

	var req struct {
		Start string `json:"start_time"`
		End   string `json:"end_time"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.schedule.UpdateBusinessHours(r.Context(), time.Weekday(day), req.Start, req.End); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Business hours updated"})
}

func (s *apiServer) handleAddHoliday(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date         string `json:"date"`
		Name         string `json:"name"`
		IsWorkingDay bool   `json:"is_working_day"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if err := s.schedule.AddHoliday(r.Context(), date, req.Name, req.IsWorkingDay); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Holiday added"})
}

func (s *apiServer) handleRemoveHoliday(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date query param must be YYYY-MM-DD")
		return
	}

	if err := s.schedule.RemoveHoliday(r.Context(), date); err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Holiday removed"})
}
