package quotes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUpstream struct {
	rates *httptest.Server
	gold  *httptest.Server

	ratesCalls atomic.Int64
	goldCalls  atomic.Int64

	ratesFail atomic.Bool
	goldBody  atomic.Value // string
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	f := &fakeUpstream{}
	f.goldBody.Store(`{"price": 2700.5}`)

	f.rates = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.ratesCalls.Add(1)
		if f.ratesFail.Load() {
			http.Error(w, "upstream down", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"rates": map[string]float64{
				"EUR": 0.9,
				"GBP": 0.8,
				"JPY": 150.0,
				"CHF": 0.88,
			},
		})
	}))
	t.Cleanup(f.rates.Close)

	f.gold = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.goldCalls.Add(1)
		_, _ = w.Write([]byte(f.goldBody.Load().(string)))
	}))
	t.Cleanup(f.gold.Close)

	return f
}

func newTestClient(f *fakeUpstream) *Client {
	return NewClient(Config{
		RatesURL: f.rates.URL,
		GoldURL:  f.gold.URL,
	}, zap.NewNop())
}

func TestGetQuote_InversionTable(t *testing.T) {
	f := newFakeUpstream(t)
	c := newTestClient(f)
	ctx := context.Background()

	eur := c.GetQuote(ctx, "EURUSD")
	assert.InDelta(t, 1/0.9, eur.Price, 1e-9, "EURUSD inverts the table rate")

	jpy := c.GetQuote(ctx, "USDJPY")
	assert.InDelta(t, 150.0, jpy.Price, 1e-9, "USDJPY reads the table rate directly")
}

func TestGetQuote_SpreadInvariants(t *testing.T) {
	f := newFakeUpstream(t)
	c := newTestClient(f)

	q := c.GetQuote(context.Background(), "GBPUSD")
	require.Greater(t, q.Price, 0.0)
	assert.LessOrEqual(t, q.Bid, q.Price)
	assert.LessOrEqual(t, q.Price, q.Ask)
	assert.InDelta(t, q.Ask-q.Bid, q.Spread, 1e-12)
	assert.Greater(t, q.Spread, 0.0)
	assert.Zero(t, q.Change)
	assert.Zero(t, q.ChangePercent)
	assert.Zero(t, q.Volume)
	assert.False(t, q.Timestamp.IsZero())
}

func TestGetQuote_CacheWithinTTL(t *testing.T) {
	f := newFakeUpstream(t)
	c := newTestClient(f)
	ctx := context.Background()

	first := c.GetQuote(ctx, "EURUSD")
	second := c.GetQuote(ctx, "EURUSD")

	assert.Equal(t, first, second, "cached quote returned verbatim")
	assert.EqualValues(t, 1, f.ratesCalls.Load(), "no second upstream call within TTL")
}

func TestGetQuote_CacheExpiry(t *testing.T) {
	f := newFakeUpstream(t)
	c := newTestClient(f)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	c.GetQuote(ctx, "EURUSD")

	c.now = func() time.Time { return base.Add(31 * time.Second) }
	c.GetQuote(ctx, "EURUSD")

	assert.EqualValues(t, 2, f.ratesCalls.Load(), "stale entry triggers a fresh fetch")
}

func TestGetQuote_StaticFallback(t *testing.T) {
	f := newFakeUpstream(t)
	f.ratesFail.Store(true)
	c := newTestClient(f)

	q := c.GetQuote(context.Background(), "EURUSD")
	price := fallbackPrices["EURUSD"]
	assert.Equal(t, price, q.Price)
	assert.InDelta(t, price*0.9995, q.Bid, 1e-12)
	assert.InDelta(t, price*1.0005, q.Ask, 1e-12)
	assert.InDelta(t, price*0.001, q.Spread, 1e-12)
}

func TestGetQuote_StaleCacheBeatsFallback(t *testing.T) {
	f := newFakeUpstream(t)
	c := newTestClient(f)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	live := c.GetQuote(ctx, "USDCHF")

	f.ratesFail.Store(true)
	c.now = func() time.Time { return base.Add(time.Minute) }
	stale := c.GetQuote(ctx, "USDCHF")

	assert.Equal(t, live, stale, "stale cache entry returned unchanged on upstream failure")
}

func TestGetQuote_GoldProvider(t *testing.T) {
	f := newFakeUpstream(t)
	c := newTestClient(f)

	q := c.GetQuote(context.Background(), "XAUUSD")
	assert.InDelta(t, 2700.5, q.Price, 1e-9)
	assert.EqualValues(t, 1, f.goldCalls.Load())
	assert.EqualValues(t, 0, f.ratesCalls.Load(), "gold path never touches the rate table")
}

func TestGetQuote_GoldMissingPriceField(t *testing.T) {
	f := newFakeUpstream(t)
	f.goldBody.Store(`{"status":"ok"}`)
	c := newTestClient(f)

	q := c.GetQuote(context.Background(), "XAUUSD")
	assert.Equal(t, goldSpotUSD, q.Price, "missing price field falls back to the approximate spot")
	// Success path, so the tight synthetic spread applies.
	assert.InDelta(t, 2*q.Price*0.0001, q.Spread, 1e-9)
}

func TestGetQuote_UnknownPair(t *testing.T) {
	f := newFakeUpstream(t)
	c := newTestClient(f)

	q := c.GetQuote(context.Background(), "BTCUSD")
	assert.Equal(t, "BTCUSD", q.Pair)
	assert.Zero(t, q.Price, "unknown pair degrades to an empty fallback record")
}

func TestGetAllQuotes_Success(t *testing.T) {
	f := newFakeUpstream(t)
	c := newTestClient(f)

	batch := c.GetAllQuotes(context.Background())
	require.Len(t, batch, 5)

	byPair := make(map[string]Quote, len(batch))
	order := make([]string, 0, len(batch))
	for _, q := range batch {
		byPair[q.Pair] = q
		order = append(order, q.Pair)
	}
	assert.Equal(t, []string{"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "XAUUSD"}, order)

	assert.InDelta(t, 1/0.9, byPair["EURUSD"].Price, 1e-9)
	assert.InDelta(t, 1/0.8, byPair["GBPUSD"].Price, 1e-9)
	assert.InDelta(t, 150.0, byPair["USDJPY"].Price, 1e-9)
	assert.InDelta(t, 0.88, byPair["USDCHF"].Price, 1e-9)

	// Gold is priced from the fixed constant, not the gold endpoint.
	assert.Equal(t, goldSpotUSD, byPair["XAUUSD"].Price)
	assert.EqualValues(t, 0, f.goldCalls.Load())

	assert.EqualValues(t, 1, f.ratesCalls.Load(), "one table fetch for the whole batch")
}

func TestGetAllQuotes_TotalFailure(t *testing.T) {
	f := newFakeUpstream(t)
	f.ratesFail.Store(true)
	c := newTestClient(f)

	batch := c.GetAllQuotes(context.Background())
	require.Len(t, batch, 5)
	for _, q := range batch {
		assert.Equal(t, fallbackPrices[q.Pair], q.Price, q.Pair)
	}
}

func TestGetAllQuotes_DoesNotPopulateCache(t *testing.T) {
	f := newFakeUpstream(t)
	c := newTestClient(f)
	ctx := context.Background()

	c.GetAllQuotes(ctx)
	assert.EqualValues(t, 1, f.ratesCalls.Load())

	c.GetQuote(ctx, "EURUSD")
	assert.EqualValues(t, 2, f.ratesCalls.Load(), "single-pair path fetches on its own")
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{}, nil)
	assert.Equal(t, defaultRatesURL, c.ratesURL)
	assert.Equal(t, defaultGoldURL, c.goldURL)
	assert.Equal(t, defaultCacheTTL, c.ttl)
	assert.Equal(t, []string{"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "XAUUSD"}, c.Instruments())
}
