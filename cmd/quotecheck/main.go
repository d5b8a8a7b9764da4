package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/you/fx-signals/internal/quotes"
	"go.uber.org/zap"
)

func main() {
	ratesURL := flag.String("rates-url", "", "override the USD rate table endpoint")
	goldURL := flag.String("gold-url", "", "override the gold price endpoint")
	timeout := flag.Duration("timeout", 15*time.Second, "overall fetch timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	client := quotes.NewClient(quotes.Config{
		RatesURL: *ratesURL,
		GoldURL:  *goldURL,
	}, zap.NewNop())

	batch := client.GetAllQuotes(ctx)

	fmt.Printf("%-8s %12s %12s %12s %10s %10s\n",
		"PAIR", "PRICE", "BID", "ASK", "SPREAD", "CHANGE")
	for _, q := range batch {
		fmt.Printf("%-8s %12s %12s %12s %10s %10s\n",
			q.Pair,
			quotes.FormatPrice(q.Price, 4),
			quotes.FormatPrice(q.Bid, 4),
			quotes.FormatPrice(q.Ask, 4),
			quotes.FormatPrice(q.Spread, 4),
			quotes.FormatChange(q.Change),
		)
	}
}
