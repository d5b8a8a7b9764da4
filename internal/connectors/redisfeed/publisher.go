package redisfeed

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/you/fx-signals/internal/config"
	"github.com/you/fx-signals/internal/quotes"
)

type Publisher struct {
	rdb     *redis.Client
	stream  string
	active  string
	quoteNS string
}

func NewPublisher(cfg *config.Config) *Publisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	return &Publisher{
		rdb:     rdb,
		stream:  cfg.Redis.Stream,
		active:  cfg.Redis.ActiveKey,
		quoteNS: cfg.Redis.QuoteNS,
	}
}

// PublishQuote writes the latest quote hash for the pair, bumps it in the
// active-pair index, and appends it to the quote stream for downstream
// consumers.
func (p *Publisher) PublishQuote(ctx context.Context, q quotes.Quote, tsMs int64) error {
	fields := map[string]interface{}{
		"pair":   q.Pair,
		"price":  q.Price,
		"bid":    q.Bid,
		"ask":    q.Ask,
		"spread": q.Spread,
		"ts_ms":  tsMs,
	}
	if err := p.rdb.HSet(ctx, p.quoteNS+q.Pair, fields).Err(); err != nil {
		return err
	}
	if err := p.rdb.ZAdd(ctx, p.active, redis.Z{
		Score: float64(tsMs), Member: q.Pair,
	}).Err(); err != nil {
		return err
	}
	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 10000,
		Approx: true,
		Values: fields,
	}).Err()
}

func (p *Publisher) Close() error { return p.rdb.Close() }
