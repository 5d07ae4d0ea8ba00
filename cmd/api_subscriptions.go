package main

import (
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/store"
)

const defaultPageSize = 50

// pageFilter reads page, limit and status query params.
func pageFilter(r *http.Request) store.PageFilter {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	return store.PageFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func (s *apiServer) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string     `json:"email"`
		Name    string     `json:"name"`
		Company string     `json:"company"`
		Phone   string     `json:"phone"`
		Plan    model.Plan `json:"plan"`
		CNAE    string     `json:"cnae"`
		Message string     `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.Plan.Valid() {
		writeError(w, http.StatusBadRequest, "plan must be basic, pro, or enterprise")
		return
	}

	sub, err := s.store.CreateSubscription(r.Context(), model.Subscription{
		Email:   req.Email,
		Name:    req.Name,
		Company: req.Company,
		Phone:   req.Phone,
		Plan:    req.Plan,
		CNAE:    req.CNAE,
		Message: req.Message,
	})
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Subscription created successfully",
		"subscription": sub,
	})
}

func (s *apiServer) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	filter := pageFilter(r)
	subs, err := s.store.ListSubscriptions(r.Context(), filter)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscriptions": subs,
		"page":          filter.Offset/filter.Limit + 1,
		"limit":         filter.Limit,
	})
}

func (s *apiServer) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	sub, err := s.store.GetSubscriptionByEmail(r.Context(), email)
	if err != nil {
		serverError(w, err)
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "Subscription not found")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *apiServer) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Subject == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "name, subject and message are required")
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	contact, err := s.store.CreateContact(r.Context(), model.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Contact message received",
		"contact": contact,
	})
}

func (s *apiServer) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.ListContacts(r.Context(), pageFilter(r))
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}
