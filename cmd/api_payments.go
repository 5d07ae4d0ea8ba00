package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/payment"
)

type paymentCustomer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
	Company  string `json:"company"`
}

func (s *apiServer) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customer    paymentCustomer `json:"customer"`
		Plan        string          `json:"plan"`
		AmountCents int64           `json:"amount_cents"`
		Payment     struct {
			Method model.PaymentMethod `json:"method"`
			Card   model.Card          `json:"card"`
		} `json:"payment"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Customer.Name == "" || !validEmail(req.Customer.Email) {
		writeError(w, http.StatusBadRequest, "customer name and valid email are required")
		return
	}
	if req.AmountCents <= 0 {
		writeError(w, http.StatusBadRequest, "amount_cents must be positive")
		return
	}
	if req.Payment.Method != model.PaymentPIX && req.Payment.Method != model.PaymentCreditCard {
		writeError(w, http.StatusBadRequest, "payment method must be pix or credit_card")
		return
	}

	order, err := s.store.CreateOrder(r.Context(), model.Order{
		CustomerName:     req.Customer.Name,
		CustomerEmail:    req.Customer.Email,
		CustomerPhone:    req.Customer.Phone,
		CustomerDocument: req.Customer.Document,
		CustomerCompany:  req.Customer.Company,
		Plan:             req.Plan,
		AmountCents:      req.AmountCents,
		Method:           req.Payment.Method,
	})
	if err != nil {
		serverError(w, err)
		return
	}

	if req.Payment.Method == model.PaymentPIX {
		charge, err := s.payments.GeneratePIX(payment.PIXRequest{
			OrderID:          order.ID,
			AmountCents:      req.AmountCents,
			CustomerName:     req.Customer.Name,
			CustomerEmail:    req.Customer.Email,
			CustomerDocument: req.Customer.Document,
		})
		if err != nil {
			serverError(w, err)
			return
		}
		if err := s.store.UpdateOrderPayment(r.Context(), order.ID, charge.PaymentID, model.OrderPending); err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"order_id":     order.ID,
			"status":       model.OrderPending,
			"payment_data": charge,
		})
		return
	}

	charge, err := s.payments.ProcessCard(payment.CardRequest{
		OrderID:     order.ID,
		AmountCents: req.AmountCents,
		Card:        req.Payment.Card,
	})
	if errors.Is(err, payment.ErrCardDeclined) {
		if uerr := s.store.UpdateOrderStatus(r.Context(), order.ID, model.OrderDeclined); uerr != nil {
			serverError(w, uerr)
			return
		}
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"order_id": order.ID,
			"status":   model.OrderDeclined,
			"error":    "card declined",
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateOrderPayment(r.Context(), order.ID, charge.PaymentID, model.OrderApproved); err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":     order.ID,
		"status":       model.OrderApproved,
		"payment_data": charge,
	})
}

func (s *apiServer) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.store.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		serverError(w, err)
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// handleGeneratePIX issues a standalone PIX charge not yet tied to an
// order, for the checkout preview.
func (s *apiServer) handleGeneratePIX(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AmountCents int64           `json:"amount_cents"`
		Customer    paymentCustomer `json:"customer"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	charge, err := s.payments.GeneratePIX(payment.PIXRequest{
		OrderID:          fmt.Sprintf("temp-%d", time.Now().UnixMilli()),
		AmountCents:      req.AmountCents,
		CustomerName:     req.Customer.Name,
		CustomerEmail:    req.Customer.Email,
		CustomerDocument: req.Customer.Document,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, charge)
}

// handlePaymentStatus polls the provider for pending orders and persists
// a settled outcome.
func (s *apiServer) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := s.store.GetOrder(r.Context(), id)
	if err != nil {
		serverError(w, err)
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	status := order.Status
	if status == model.OrderPending && order.PaymentID != "" {
		result := s.payments.CheckStatus(order.PaymentID)
		if result.Status != model.OrderPending {
			if err := s.store.UpdateOrderStatus(r.Context(), id, result.Status); err != nil {
				serverError(w, err)
				return
			}
			status = result.Status
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (s *apiServer) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID   string            `json:"order_id"`
		Status    model.OrderStatus `json:"status"`
		PaymentID string            `json:"payment_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	if err := s.store.UpdateOrderPayment(r.Context(), req.OrderID, req.PaymentID, req.Status); err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
