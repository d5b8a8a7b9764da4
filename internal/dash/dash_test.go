package dash

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/fx-signals/internal/pairs"
	"github.com/you/fx-signals/internal/quotes"
)

func TestStore_UpdateAndList(t *testing.T) {
	s := NewStore()
	now := time.Now()

	s.Update(quotes.Quote{Pair: "USDJPY", Price: 149.5, Bid: 149.48, Ask: 149.52, Spread: 0.04, Timestamp: now})
	s.Update(quotes.Quote{Pair: "EURUSD", Price: 1.0850, Bid: 1.0849, Ask: 1.0851, Spread: 0.0002, Timestamp: now})
	// Overwrite keeps one row per pair.
	s.Update(quotes.Quote{Pair: "EURUSD", Price: 1.0900, Bid: 1.0899, Ask: 1.0901, Spread: 0.0002, Timestamp: now})

	rows := s.List()
	require.Len(t, rows, 2)
	assert.Equal(t, "EURUSD", rows[0].Pair, "rows sorted by pair")
	assert.Equal(t, 1.09, rows[0].Price)
	assert.Equal(t, "1.0900", rows[0].PriceText)
	assert.Equal(t, "USDJPY", rows[1].Pair)
}

type stubSource struct {
	records []pairs.Record
	err     error
}

func (s *stubSource) ReadPairRecords(_ context.Context, _ int64) ([]pairs.Record, error) {
	return s.records, s.err
}

func TestHandleScreen_FilterSortSearch(t *testing.T) {
	src := &stubSource{records: []pairs.Record{
		{Symbol: "EURUSDm", RSI: 75, Volume: 1_500_000},
		{Symbol: "GBPUSDm", RSI: 25, Volume: 500_000},
		{Symbol: "EURGBP", RSI: 62, Volume: 2_000_000},
	}}

	req := httptest.NewRequest("GET", "/api/pairs?rsi_min=50&rsi_max=100&sort=rsi&order=asc&q=eur", nil)
	w := httptest.NewRecorder()
	handleScreen(w, req, src)

	require.Equal(t, 200, w.Code)
	var resp screenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Pairs, 2)
	assert.Equal(t, "EURGBP", resp.Pairs[0].Symbol)
	assert.Equal(t, "EURUSDm", resp.Pairs[1].Symbol)
	assert.Equal(t, "RSI: 50-100", resp.FilterSummary)
	assert.Equal(t, "Sorted by rsi (ascending)", resp.SortSummary)
}

func TestHandleScreen_InvalidEnumsNormalized(t *testing.T) {
	src := &stubSource{records: []pairs.Record{
		{Symbol: "EURUSDm", RSI: 55},
	}}

	req := httptest.NewRequest("GET", "/api/pairs?signal=sideways&volume=huge&type=exotic", nil)
	w := httptest.NewRecorder()
	handleScreen(w, req, src)

	require.Equal(t, 200, w.Code)
	var resp screenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Pairs, 1, "unrecognized enum values reset to all")
}

func TestHandleScreen_NilSource(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/pairs", nil)
	w := httptest.NewRecorder()
	handleScreen(w, req, nil)

	require.Equal(t, 200, w.Code)
	var resp screenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Pairs)
}

func TestHandleScreen_SourceError(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/pairs", nil)
	w := httptest.NewRecorder()
	handleScreen(w, req, &stubSource{err: errors.New("redis down")})

	assert.Equal(t, 503, w.Code)
}
