package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

var testNow = time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)

func newTestProvider(randVal float64) *Provider {
	ids := 0
	return &Provider{
		randF: func() float64 { return randVal },
		newID: func() string {
			ids++
			return "00000000-0000-0000-0000-00000000000" + string(rune('0'+ids))
		},
		now: func() time.Time { return testNow },
	}
}

func TestGeneratePIX(t *testing.T) {
	p := newTestProvider(0.5)

	charge, err := p.GeneratePIX(PIXRequest{
		OrderID:          "order-1",
		AmountCents:      19700,
		CustomerName:     "Carlos",
		CustomerEmail:    "carlos@loja.com",
		CustomerDocument: "12345678901",
	})
	require.NoError(t, err)

	assert.Equal(t, "pix-order-1", charge.PaymentID)
	assert.Contains(t, charge.PIXKey, "@aiassistpro.com.br")
	assert.Equal(t, testNow.Add(15*time.Minute), charge.ExpiresAt)
	assert.Equal(t, int64(19700), charge.AmountCents)

	// BR Code payload: fixed header, embedded key, decimal amount,
	// merchant identification.
	assert.True(t, len(charge.QRCode) > 100)
	assert.Contains(t, charge.QRCode, "br.gov.bcb.pix")
	assert.Contains(t, charge.QRCode, charge.PIXKey)
	assert.Contains(t, charge.QRCode, "540197.00")
	assert.Contains(t, charge.QRCode, "5925AI AGENTS PLATFORM LTDA")
	assert.Contains(t, charge.QRCode, "6009SAO PAULO")
}

func TestGeneratePIXValidation(t *testing.T) {
	p := newTestProvider(0.5)

	_, err := p.GeneratePIX(PIXRequest{AmountCents: 1000})
	assert.Error(t, err, "missing order id")

	_, err = p.GeneratePIX(PIXRequest{OrderID: "o", AmountCents: 0})
	assert.Error(t, err, "zero amount")

	_, err = p.GeneratePIX(PIXRequest{OrderID: "o", AmountCents: -5})
	assert.Error(t, err, "negative amount")
}

func TestProcessCardApproved(t *testing.T) {
	p := newTestProvider(0.5)

	charge, err := p.ProcessCard(CardRequest{
		OrderID:     "order-2",
		AmountCents: 49700,
		Card: model.Card{
			Number:       "4111111111111111",
			Name:         "CARLOS M SILVA",
			Expiry:       "12/28",
			CVV:          "123",
			Installments: 3,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "1111", charge.Last4)
	assert.Equal(t, 3, charge.Installments)
	assert.NotEmpty(t, charge.PaymentID)
	assert.NotEmpty(t, charge.TransactionID)
	assert.NotEqual(t, charge.PaymentID, charge.TransactionID)
}

func TestProcessCardDeclined(t *testing.T) {
	p := newTestProvider(0.05) // below the decline threshold

	_, err := p.ProcessCard(CardRequest{
		OrderID:     "order-3",
		AmountCents: 19700,
		Card:        model.Card{Number: "4111111111111111", Installments: 1},
	})
	require.ErrorIs(t, err, ErrCardDeclined)
}

func TestProcessCardValidation(t *testing.T) {
	p := newTestProvider(0.5)

	_, err := p.ProcessCard(CardRequest{
		OrderID:     "order-4",
		AmountCents: 19700,
		Card:        model.Card{Number: "411"},
	})
	assert.Error(t, err, "short card number")

	charge, err := p.ProcessCard(CardRequest{
		OrderID:     "order-5",
		AmountCents: 19700,
		Card:        model.Card{Number: "4111111111111111"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, charge.Installments, "zero installments defaults to one")
}

func TestCheckStatus(t *testing.T) {
	cases := []struct {
		randVal float64
		want    model.OrderStatus
	}{
		{0.0, model.OrderPending},
		{0.4, model.OrderApproved},
		{0.9, model.OrderDeclined},
	}
	for _, tc := range cases {
		p := newTestProvider(tc.randVal)
		res := p.CheckStatus("pay-1")
		assert.Equal(t, tc.want, res.Status, "rand %v", tc.randVal)
		assert.Equal(t, "pay-1", res.PaymentID)
		assert.Equal(t, testNow, res.UpdatedAt)
	}
}
