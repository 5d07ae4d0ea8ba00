// Package payment implements the simulated checkout provider: PIX charge
// generation and credit card processing. No real gateway is called; the
// flows mirror a production provider closely enough for the frontend to
// integrate against.
package payment

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

const (
	// pixExpiry is how long a generated PIX charge stays payable.
	pixExpiry = 15 * time.Minute
	// declineRate is the simulated share of card charges that fail.
	declineRate = 0.1

	merchantName = "AI AGENTS PLATFORM LTDA"
	merchantCity = "SAO PAULO"
	pixKeyDomain = "aiassistpro.com.br"
)

// ErrCardDeclined is returned when the simulated acquirer rejects a charge.
var ErrCardDeclined = eris.New("payment failed: card declined")

// PIXRequest asks for a PIX charge for an order.
type PIXRequest struct {
	OrderID          string `json:"order_id"`
	AmountCents      int64  `json:"amount_cents"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerDocument string `json:"customer_document"`
}

// PIXCharge is a payable PIX charge with its BR Code payload.
type PIXCharge struct {
	PaymentID   string    `json:"payment_id"`
	PIXKey      string    `json:"pix_key"`
	QRCode      string    `json:"qr_code"`
	AmountCents int64     `json:"amount_cents"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CardRequest asks for a credit card charge for an order.
type CardRequest struct {
	OrderID     string     `json:"order_id"`
	AmountCents int64      `json:"amount_cents"`
	Card        model.Card `json:"card"`
}

// CardCharge is the result of an approved card charge.
type CardCharge struct {
	PaymentID     string `json:"payment_id"`
	TransactionID string `json:"transaction_id"`
	Last4         string `json:"last4"`
	Installments  int    `json:"installments"`
}

// StatusResult is a payment provider status poll.
type StatusResult struct {
	PaymentID string            `json:"payment_id"`
	Status    model.OrderStatus `json:"status"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Provider simulates a payment gateway. Safe for concurrent use as long
// as the injected randomness source is.
type Provider struct {
	randF func() float64
	newID func() string
	now   func() time.Time
}

// NewProvider creates a Provider with real randomness and clock.
func NewProvider() *Provider {
	return &Provider{
		randF: rand.Float64,
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
}

// GeneratePIX builds a PIX charge with a BR Code payload and a 15-minute
// expiry. Generation always succeeds for a valid amount; settlement is
// reported through the webhook or status poll.
func (p *Provider) GeneratePIX(req PIXRequest) (*PIXCharge, error) {
	if req.OrderID == "" {
		return nil, eris.New("payment: order id required")
	}
	if req.AmountCents <= 0 {
		return nil, eris.Errorf("payment: invalid amount %d", req.AmountCents)
	}

	pixKey := fmt.Sprintf("pix-%s@%s", p.newID(), pixKeyDomain)
	amount := fmt.Sprintf("%.2f", float64(req.AmountCents)/100)
	qrCode := fmt.Sprintf(
		"00020126580014br.gov.bcb.pix0136%s520400005303986540%s5802BR5925%s6009%s62070503***6304",
		pixKey, amount, merchantName, merchantCity,
	)

	return &PIXCharge{
		PaymentID:   "pix-" + req.OrderID,
		PIXKey:      pixKey,
		QRCode:      qrCode,
		AmountCents: req.AmountCents,
		ExpiresAt:   p.now().Add(pixExpiry),
	}, nil
}

// ProcessCard simulates an immediate card charge. Roughly one in ten
// charges is declined.
func (p *Provider) ProcessCard(req CardRequest) (*CardCharge, error) {
	if req.OrderID == "" {
		return nil, eris.New("payment: order id required")
	}
	if req.AmountCents <= 0 {
		return nil, eris.Errorf("payment: invalid amount %d", req.AmountCents)
	}
	if len(req.Card.Number) < 13 {
		return nil, eris.New("payment: invalid card number")
	}

	if p.randF() < declineRate {
		return nil, ErrCardDeclined
	}

	installments := req.Card.Installments
	if installments <= 0 {
		installments = 1
	}

	return &CardCharge{
		PaymentID:     "card-" + p.newID(),
		TransactionID: "txn_" + p.newID(),
		Last4:         req.Card.Number[len(req.Card.Number)-4:],
		Installments:  installments,
	}, nil
}

// CheckStatus polls the simulated provider for a payment's state.
func (p *Provider) CheckStatus(paymentID string) StatusResult {
	statuses := []model.OrderStatus{model.OrderPending, model.OrderApproved, model.OrderDeclined}
	return StatusResult{
		PaymentID: paymentID,
		Status:    statuses[int(p.randF()*float64(len(statuses)))%len(statuses)],
		UpdatedAt: p.now(),
	}
}
