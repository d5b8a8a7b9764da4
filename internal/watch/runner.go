package watch

import (
	"context"
	"time"

	"github.com/you/fx-signals/internal/config"
	"github.com/you/fx-signals/internal/dash"
	imetrics "github.com/you/fx-signals/internal/metrics"
	"github.com/you/fx-signals/internal/quotes"
	"go.uber.org/zap"
)

// Quoter is the slice of the quote client the runner needs.
type Quoter interface {
	GetAllQuotes(ctx context.Context) []quotes.Quote
}

// QuotePublisher pushes quotes to the shared feed. Nil disables publishing.
type QuotePublisher interface {
	PublishQuote(ctx context.Context, q quotes.Quote, tsMs int64) error
}

// Run polls the quote client at the configured interval and fans each
// batch out to the dash store, the prometheus gauges, and the feed
// publisher. Returns when ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, q Quoter, store *dash.Store, pub QuotePublisher, log *zap.Logger) {
	t := time.NewTicker(cfg.PollInterval())
	defer t.Stop()

	refresh(ctx, q, store, pub, log)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			refresh(ctx, q, store, pub, log)
		}
	}
}

func refresh(ctx context.Context, q Quoter, store *dash.Store, pub QuotePublisher, log *zap.Logger) {
	batch := q.GetAllQuotes(ctx)
	for _, quote := range batch {
		store.Update(quote)
		imetrics.QuotePrice.WithLabelValues(quote.Pair).Set(quote.Price)
		imetrics.QuoteSpread.WithLabelValues(quote.Pair).Set(quote.Spread)

		if pub == nil {
			continue
		}
		if err := pub.PublishQuote(ctx, quote, quote.Timestamp.UnixMilli()); err != nil {
			log.Warn("watch: quote publish failed",
				zap.String("pair", quote.Pair), zap.Error(err))
		}
	}
	log.Debug("watch: quotes refreshed", zap.Int("count", len(batch)))
}
