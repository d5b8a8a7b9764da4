package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/you/fx-signals/internal/config"
	"github.com/you/fx-signals/internal/connectors/redisfeed"
	"github.com/you/fx-signals/internal/dash"
	"github.com/you/fx-signals/internal/metrics"
	"github.com/you/fx-signals/internal/quotes"
	"github.com/you/fx-signals/internal/watch"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger() (*zap.Logger, error) {
	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(zap.DebugLevel),
		Development: false,
		Encoding:    "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stack",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()

	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Warn("received signal, shutting down...")
		cancel()
	}()

	metrics.Serve(ctx, cfg.Metrics.ListenAddr, nil, logger)

	client := quotes.NewClient(quotes.Config{
		RatesURL:       cfg.Quotes.RatesURL,
		GoldURL:        cfg.Quotes.GoldURL,
		CacheTTL:       cfg.CacheTTL(),
		RequestTimeout: cfg.RequestTimeout(),
		FallbackPrices: cfg.Quotes.FallbackPrices,
	}, logger)

	var pub watch.QuotePublisher
	var src dash.PairSource
	if cfg.Redis.Addr != "" {
		publisher := redisfeed.NewPublisher(cfg)
		defer publisher.Close()
		pub = publisher

		consumer := redisfeed.NewConsumer(cfg)
		defer consumer.Close()
		src = consumer
	} else {
		logger.Info("redis feed disabled: empty addr")
	}

	store := dash.NewStore()
	go dash.StartHTTP(ctx, store, src, cfg.Dash.ListenAddr)
	go watch.Run(ctx, cfg, client, store, pub, logger)

	logger.Info("fx-signals started",
		zap.Strings("instruments", client.Instruments()),
		zap.Duration("poll_interval", cfg.PollInterval()),
	)

	for ctx.Err() == nil {
		time.Sleep(250 * time.Millisecond)
	}
}
