package redisfeed

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/you/fx-signals/internal/config"
	"github.com/you/fx-signals/internal/pairs"
	"github.com/you/fx-signals/internal/quotes"
)

type Consumer struct {
	rdb       *redis.Client
	activeKey string // default: "quote:active"
	quoteNS   string // default: "quote:last:"
	metricsNS string // default: "pair:metrics:"
}

// NewConsumer initializes the client with the configured key namespaces.
func NewConsumer(cfg *config.Config) *Consumer {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	return &Consumer{
		rdb:       rdb,
		activeKey: cfg.Redis.ActiveKey,
		quoteNS:   cfg.Redis.QuoteNS,
		metricsNS: cfg.Redis.MetricsNS,
	}
}

// ReadQuote reads the latest quote hash for a pair.
func (c *Consumer) ReadQuote(ctx context.Context, pair string) (quotes.Quote, error) {
	m, err := c.rdb.HGetAll(ctx, c.quoteNS+pair).Result()
	if err != nil {
		return quotes.Quote{}, err
	}
	if len(m) == 0 {
		return quotes.Quote{}, redis.Nil
	}
	tsMs, _ := strconv.ParseInt(m["ts_ms"], 10, 64)
	return quotes.Quote{
		Pair:      m["pair"],
		Price:     parseF(m["price"]),
		Bid:       parseF(m["bid"]),
		Ask:       parseF(m["ask"]),
		Spread:    parseF(m["spread"]),
		Timestamp: time.UnixMilli(tsMs),
	}, nil
}

// ActivePairs returns the symbols from the active ZSET newer than sinceMs.
func (c *Consumer) ActivePairs(ctx context.Context, sinceMs int64) ([]string, error) {
	return c.rdb.ZRangeByScore(ctx, c.activeKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(sinceMs, 10),
		Max: "+inf",
	}).Result()
}

// ReadPairRecord reads one pair:metrics:<SYMBOL> hash, written by the
// analytics side, into a screener record.
func (c *Consumer) ReadPairRecord(ctx context.Context, symbol string) (pairs.Record, error) {
	m, err := c.rdb.HGetAll(ctx, c.metricsNS+symbol).Result()
	if err != nil {
		return pairs.Record{}, err
	}
	if len(m) == 0 {
		return pairs.Record{}, redis.Nil
	}
	r := pairs.Record{
		Symbol: symbol,
		RSI:    parseF(m["rsi"]),
		Volume: parseF(m["volume"]),
		Change: parseF(m["change"]),
	}
	if sym, ok := m["symbol"]; ok && sym != "" {
		r.Symbol = sym
	}
	if score, ok := m["rfi_score"]; ok {
		rfi := &pairs.RFIData{Score: parseF(score)}
		if sig, ok := m["rfi_signal"]; ok {
			rfi.Signal = pairs.Signal(sig)
		}
		r.RFI = rfi
	}
	return r, nil
}

// ReadPairRecords loads the records for every recently-active symbol.
// Symbols without a metrics hash are skipped.
func (c *Consumer) ReadPairRecords(ctx context.Context, sinceMs int64) ([]pairs.Record, error) {
	symbols, err := c.ActivePairs(ctx, sinceMs)
	if err != nil {
		return nil, err
	}
	out := make([]pairs.Record, 0, len(symbols))
	for _, sym := range symbols {
		r, err := c.ReadPairRecord(ctx, sym)
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Consumer) Close() error { return c.rdb.Close() }

func parseF(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
