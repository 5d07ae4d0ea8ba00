package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

// HTTPSink posts lead batches to a webhook that feeds a managed sheet.
type HTTPSink struct {
	webhookURL string
	http       *http.Client
	now        func() time.Time
}

// NewHTTPSink creates a sink posting to the given webhook URL.
func NewHTTPSink(webhookURL string) *HTTPSink {
	return &HTTPSink{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

type webhookRow struct {
	model.Lead
	DataCaptura string `json:"data_captura"`
}

// Append posts the leads as one JSON batch. The webhook owns ordering and
// deduplication.
func (s *HTTPSink) Append(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	captured := s.now().UTC().Format(time.RFC3339)
	rows := make([]webhookRow, len(leads))
	for i, lead := range leads {
		rows[i] = webhookRow{Lead: lead, DataCaptura: captured}
	}

	payload, err := json.Marshal(map[string]any{"rows": rows})
	if err != nil {
		return eris.Wrap(err, "sheets: marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "sheets: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "sheets: webhook request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return eris.Errorf("sheets: webhook status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// FindByCNPJ is not available over the webhook; the sheet is write-only
// from this side.
func (s *HTTPSink) FindByCNPJ(_ context.Context, _ string) (*model.Lead, error) {
	return nil, eris.New("sheets: webhook sink does not support lookup")
}
