package model

import "time"

// PaymentMethod identifies how an order is paid.
type PaymentMethod string

const (
	PaymentPIX        PaymentMethod = "pix"
	PaymentCreditCard PaymentMethod = "credit_card"
)

// OrderStatus tracks the payment lifecycle of an order.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderApproved OrderStatus = "approved"
	OrderDeclined OrderStatus = "declined"
)

// Order is a checkout attempt for a plan.
type Order struct {
	ID               string        `json:"id"`
	CustomerName     string        `json:"customer_name"`
	CustomerEmail    string        `json:"customer_email"`
	CustomerPhone    string        `json:"customer_phone,omitempty"`
	CustomerDocument string        `json:"customer_document"`
	CustomerCompany  string        `json:"customer_company,omitempty"`
	Plan             string        `json:"plan"`
	AmountCents      int64         `json:"amount_cents"`
	Method           PaymentMethod `json:"payment_method"`
	PaymentID        string        `json:"payment_id,omitempty"`
	Status           OrderStatus   `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Card holds credit card details for a simulated charge. Never persisted.
type Card struct {
	Number       string `json:"number"`
	Name         string `json:"name"`
	Expiry       string `json:"expiry"`
	CVV          string `json:"cvv"`
	Installments int    `json:"installments"`
}
