package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	imetrics "github.com/you/fx-signals/internal/metrics"
	"go.uber.org/zap"
)

const (
	defaultRatesURL = "https://api.exchangerate-api.com/v4/latest/USD"
	defaultGoldURL  = "https://api.gold-api.com/price/XAU"

	defaultCacheTTL = 30 * time.Second
	defaultTimeout  = 10 * time.Second

	// Approximate spot used when the gold endpoint answers without a price
	// field, and for the batch path which never calls the gold endpoint.
	goldSpotUSD = 2650.0
)

// instrument maps a pair symbol to its key in the USD rate table. Invert
// marks pairs quoted as USD per unit of foreign currency: the table store
// is foreign-per-USD, so those rates flip. XAUUSD uses the gold provider
// instead of the table.
type instrument struct {
	ccy    string
	invert bool
	gold   bool
}

// instrumentOrder fixes the pair set and the order GetAllQuotes reports in.
var instrumentOrder = []string{"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "XAUUSD"}

var instruments = map[string]instrument{
	"EURUSD": {ccy: "EUR", invert: true},
	"GBPUSD": {ccy: "GBP", invert: true},
	"USDJPY": {ccy: "JPY"},
	"USDCHF": {ccy: "CHF"},
	"XAUUSD": {gold: true},
}

// fallbackPrices backs the last-resort synthetic quotes.
var fallbackPrices = map[string]float64{
	"EURUSD": 1.0850,
	"GBPUSD": 1.2650,
	"USDJPY": 149.50,
	"USDCHF": 0.8750,
	"XAUUSD": goldSpotUSD,
}

// Quote is the normalized per-pair price record. Change, ChangePercent and
// Volume are carried for interface stability; neither upstream supplies
// them, so they are always zero.
type Quote struct {
	Pair          string    `json:"pair"`
	Price         float64   `json:"price"`
	Bid           float64   `json:"bid"`
	Ask           float64   `json:"ask"`
	Spread        float64   `json:"spread"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        float64   `json:"volume"`
	Timestamp     time.Time `json:"timestamp"`
}

type cacheEntry struct {
	quote    Quote
	storedAt time.Time
}

// Config carries the client knobs. Zero values pick the defaults, so the
// observable behavior of an unconfigured client matches the constants above.
type Config struct {
	RatesURL       string
	GoldURL        string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	FallbackPrices map[string]float64
}

// Client fetches quotes for the fixed instrument set with a per-pair TTL
// cache and a degrade-to-fallback path. GetQuote and GetAllQuotes never
// return an error: any upstream trouble collapses into stale-cache or
// static-fallback data. Safe for concurrent use.
type Client struct {
	httpc    *http.Client
	log      *zap.Logger
	ratesURL string
	goldURL  string
	ttl      time.Duration
	fallback map[string]float64

	now func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.RatesURL == "" {
		cfg.RatesURL = defaultRatesURL
	}
	if cfg.GoldURL == "" {
		cfg.GoldURL = defaultGoldURL
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	fallback := cfg.FallbackPrices
	if fallback == nil {
		fallback = fallbackPrices
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpc:    &http.Client{Timeout: cfg.RequestTimeout},
		log:      log,
		ratesURL: cfg.RatesURL,
		goldURL:  cfg.GoldURL,
		ttl:      cfg.CacheTTL,
		fallback: fallback,
		now:      time.Now,
		cache:    make(map[string]cacheEntry, len(instrumentOrder)),
	}
}

// Instruments returns the fixed pair set in reporting order.
func (c *Client) Instruments() []string {
	out := make([]string, len(instrumentOrder))
	copy(out, instrumentOrder)
	return out
}

// GetQuote returns the current quote for pair. Resolution order: fresh
// cache entry, live fetch (cached on success), stale cache entry, static
// fallback. Exactly one upstream attempt per call, no retries.
func (c *Client) GetQuote(ctx context.Context, pair string) Quote {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.cache[pair]; ok && c.now().Sub(e.storedAt) < c.ttl {
		imetrics.QuoteCacheHits.Inc()
		return e.quote
	}

	price, err := c.fetchLive(ctx, pair)
	if err != nil {
		imetrics.UpstreamErrors.Inc()
		c.log.Warn("live quote fetch failed",
			zap.String("pair", pair), zap.Error(err))
		if e, ok := c.cache[pair]; ok {
			return e.quote
		}
		imetrics.FallbackServed.Inc()
		return c.fallbackQuote(pair)
	}

	q := c.liveQuote(pair, price)
	c.cache[pair] = cacheEntry{quote: q, storedAt: c.now()}
	return q
}

// GetAllQuotes fetches the USD rate table once and derives every
// instrument from it. Gold is priced from the fixed spot constant here,
// not from the gold endpoint. The per-pair cache is neither read nor
// written. A failed table fetch yields fallback quotes for all pairs.
func (c *Client) GetAllQuotes(ctx context.Context) []Quote {
	rates, err := c.fetchRates(ctx)
	if err != nil {
		imetrics.UpstreamErrors.Inc()
		c.log.Warn("rate table fetch failed", zap.Error(err))
		out := make([]Quote, 0, len(instrumentOrder))
		for _, pair := range instrumentOrder {
			imetrics.FallbackServed.Inc()
			out = append(out, c.fallbackQuote(pair))
		}
		return out
	}

	out := make([]Quote, 0, len(instrumentOrder))
	for _, pair := range instrumentOrder {
		inst := instruments[pair]
		if inst.gold {
			out = append(out, c.liveQuote(pair, goldSpotUSD))
			continue
		}
		rate, ok := rates[inst.ccy]
		if !ok || rate == 0 {
			c.log.Warn("rate table missing currency",
				zap.String("pair", pair), zap.String("ccy", inst.ccy))
			imetrics.FallbackServed.Inc()
			out = append(out, c.fallbackQuote(pair))
			continue
		}
		if inst.invert {
			rate = 1 / rate
		}
		out = append(out, c.liveQuote(pair, rate))
	}
	return out
}

func (c *Client) fetchLive(ctx context.Context, pair string) (float64, error) {
	inst, ok := instruments[pair]
	if !ok {
		return 0, fmt.Errorf("unknown pair %s", pair)
	}

	start := time.Now()
	defer func() {
		imetrics.FetchLatency.Observe(time.Since(start).Seconds())
	}()

	if inst.gold {
		return c.fetchGold(ctx)
	}
	rates, err := c.fetchRates(ctx)
	if err != nil {
		return 0, err
	}
	rate, ok := rates[inst.ccy]
	if !ok || rate == 0 {
		return 0, fmt.Errorf("rate table missing %s", inst.ccy)
	}
	if inst.invert {
		rate = 1 / rate
	}
	return rate, nil
}

func (c *Client) fetchRates(ctx context.Context) (map[string]float64, error) {
	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := c.getJSON(ctx, c.ratesURL, &body); err != nil {
		return nil, err
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rate table empty")
	}
	return body.Rates, nil
}

func (c *Client) fetchGold(ctx context.Context) (float64, error) {
	var body struct {
		Price *float64 `json:"price"`
	}
	if err := c.getJSON(ctx, c.goldURL, &body); err != nil {
		return 0, err
	}
	if body.Price == nil {
		return goldSpotUSD, nil
	}
	return *body.Price, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// liveQuote builds a success-path record: a synthetic half-spread of one
// basis point on either side of the reference price.
func (c *Client) liveQuote(pair string, price float64) Quote {
	half := price * 0.0001
	bid := price - half
	ask := price + half
	return Quote{
		Pair:      pair,
		Price:     price,
		Bid:       bid,
		Ask:       ask,
		Spread:    ask - bid,
		Timestamp: c.now(),
	}
}

// fallbackQuote builds a record from the static price table with a wider
// synthetic spread marking it as degraded data.
func (c *Client) fallbackQuote(pair string) Quote {
	price := c.fallback[pair]
	return Quote{
		Pair:      pair,
		Price:     price,
		Bid:       price * 0.9995,
		Ask:       price * 1.0005,
		Spread:    price * 0.001,
		Timestamp: c.now(),
	}
}
