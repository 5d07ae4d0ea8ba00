package leadsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/resilience"
)

func TestQuery(t *testing.T) {
	var gotReq *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"leads": [
				{"cnpj": "12345678000190", "razao_social": "PADARIA DO ZE LTDA", "uf": "SP"},
				{"cnpj": "98765432000101", "razao_social": "RESTAURANTE BOM PRATO", "uf": "RJ"}
			],
			"total": 2
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", WithRateLimit(1000))
	leads, err := client.Query(context.Background(), model.CaptureConfig{
		CNAE:       "5611201",
		WindowDays: 30,
		UFFilter:   "SP",
		Limit:      500,
	})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "12345678000190", leads[0].CNPJ)
	assert.Equal(t, "PADARIA DO ZE LTDA", leads[0].RazaoSocial)

	assert.Equal(t, "/v1/leads", gotReq.URL.Path)
	assert.Equal(t, "5611201", gotReq.URL.Query().Get("cnae"))
	assert.Equal(t, "30", gotReq.URL.Query().Get("window_days"))
	assert.Equal(t, "SP", gotReq.URL.Query().Get("uf"))
	assert.Equal(t, "500", gotReq.URL.Query().Get("limit"))
	assert.Equal(t, "Bearer test-key", gotReq.Header.Get("Authorization"))
	assert.Equal(t, "ai-assistpro/1.0", gotReq.Header.Get("User-Agent"))
}

func TestQueryRequiresCNAE(t *testing.T) {
	client := NewClient("http://unused", "key")
	_, err := client.Query(context.Background(), model.CaptureConfig{})
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/leads/stats/5611201", r.URL.Path)
		assert.Equal(t, "90", r.URL.Query().Get("window_days"))
		w.Write([]byte(`{"total_leads": 1250, "states_count": 12, "cities_count": 340}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", WithRateLimit(1000))
	stats, err := client.Stats(context.Background(), "5611201", 90)
	require.NoError(t, err)
	assert.Equal(t, 1250, stats.TotalLeads)
	assert.Equal(t, 12, stats.StatesCount)
	assert.Equal(t, 340, stats.CitiesCount)
}

func TestQueryTransientStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", WithRateLimit(1000))
	_, err := client.Query(context.Background(), model.CaptureConfig{CNAE: "5611201"})
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err), "5xx should be retryable")
}

func TestQueryNonTransientStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", WithRateLimit(1000))
	_, err := client.Query(context.Background(), model.CaptureConfig{CNAE: "5611201"})
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err), "404 should not be retryable")
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", WithRateLimit(1000))
	for i := 0; i < 5; i++ {
		_, err := client.Query(context.Background(), model.CaptureConfig{CNAE: "5611201"})
		require.Error(t, err)
	}
	assert.Equal(t, 5, hits)

	// Breaker is open now; the request never reaches the server.
	_, err := client.Query(context.Background(), model.CaptureConfig{CNAE: "5611201"})
	var open *resilience.ErrCircuitOpen
	require.True(t, errors.As(err, &open))
	assert.Equal(t, 5, hits)
}
