package model

import "time"

// Plan identifies a subscription tier.
type Plan string

const (
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Valid reports whether p is one of the known plans.
func (p Plan) Valid() bool {
	switch p {
	case PlanBasic, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Subscription is a signup for one of the product plans.
type Subscription struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Plan      Plan      `json:"plan"`
	CNAE      string    `json:"cnae,omitempty"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contact is a message submitted through the contact form.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlanCount is one row of the plan distribution aggregate.
type PlanCount struct {
	Plan       Plan    `json:"plan"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage,omitempty"`
}

// TrendPoint is one day/plan bucket of the subscription trend aggregate.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Plan  Plan      `json:"plan"`
	Count int       `json:"count"`
}
