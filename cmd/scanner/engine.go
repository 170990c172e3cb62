package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	redisc "arbScope/internal/cache/redis"
	"arbScope/internal/chain"
	"arbScope/internal/collector"
	"arbScope/internal/config"
	"arbScope/internal/notify"
	"arbScope/internal/registry"
	"arbScope/internal/scheduler"
	"arbScope/internal/sink"
	"arbScope/internal/storage/postgres"
	"arbScope/internal/venue"
)

// engine holds the wired components of a scanner process.
type engine struct {
	reg       *registry.Registry
	chain     *chain.Client
	scheduler *scheduler.Scheduler
	closers   []func() error
}

func (e *engine) Close() error {
	var err error
	for i := len(e.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, e.closers[i]())
	}
	return err
}

func buildEngine(ctx context.Context, cfg config.Config, maxCycles int, logger *zap.Logger) (*engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reg, err := registry.New(cfg.Registry)
	if err != nil {
		return nil, err
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	e := &engine{reg: reg, chain: chainClient}
	e.closers = append(e.closers, func() error { chainClient.Close(); return nil })

	if err := verifyRegistryTokens(ctx, chainClient, reg, cfg, logger); err != nil {
		_ = e.Close()
		return nil, err
	}

	out, seqStore, err := buildSinks(ctx, cfg, e, logger)
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	coll := collector.New(collector.Config{
		Workers:     cfg.Workers,
		CallTimeout: cfg.CallTimeout,
		PinBlock:    cfg.PinBlock,
	}, venue.NewQuoter(chainClient), chainClient, logger)

	var opts []scheduler.Option
	if seqStore != nil {
		opts = append(opts, scheduler.WithSequenceStore(seqStore))
	}
	e.scheduler = scheduler.New(scheduler.Config{
		Cadence:       cfg.Cadence,
		CycleDeadline: cfg.CycleDeadline,
		MaxCycles:     maxCycles,
	}, reg, coll, out, logger, opts...)
	return e, nil
}

func verifyRegistryTokens(ctx context.Context, caller chain.Caller, reg *registry.Registry, cfg config.Config, logger *zap.Logger) error {
	tokens := reg.Tokens()
	expected := make([]chain.ExpectedToken, 0, len(tokens))
	for _, t := range tokens {
		expected = append(expected, chain.ExpectedToken{Symbol: t.Symbol, Address: t.Address, Decimals: t.Decimals})
	}
	if err := chain.VerifyTokens(ctx, caller, chain.NewTokenMetaCache(), expected, cfg.MaxRetries, cfg.RetryBackoff, logger); err != nil {
		return fmt.Errorf("verify tokens: %w", err)
	}
	return nil
}

// buildSinks wires the configured outputs. The log sink is always on. The
// cycle sequence is kept in the checkpoint file when set, else in Postgres.
func buildSinks(ctx context.Context, cfg config.Config, e *engine, logger *zap.Logger) (sink.Sink, scheduler.SequenceStore, error) {
	sinks := []sink.Sink{sink.NewLogSink(logger)}
	var seqStore scheduler.SequenceStore
	if cfg.Checkpoint != "" {
		seqStore = scheduler.NewFileCheckpoint(cfg.Checkpoint)
	}

	sc := cfg.Sinks
	if sc.JSONLPath != "" {
		sinks = append(sinks, sink.NewJSONLSink(sc.JSONLPath, sc.JSONLOpportunitiesOnly))
	}

	if sc.PostgresDSN != "" {
		store, err := postgres.NewStore(ctx, sc.PostgresDSN, "scanner")
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		e.closers = append(e.closers, func() error { store.Close(); return nil })
		if sc.PostgresMigrate {
			if err := store.Migrate(ctx); err != nil {
				return nil, nil, err
			}
		}
		sinks = append(sinks, store)
		if seqStore == nil {
			seqStore = store
		}
	}

	if sc.RedisAddr != "" {
		client, err := redisc.New(ctx, redisc.ClientConfig{
			Addr:       sc.RedisAddr,
			Password:   sc.RedisPassword,
			DB:         sc.RedisDB,
			TLSEnabled: sc.RedisTLS,
		})
		if err != nil {
			return nil, nil, err
		}
		e.closers = append(e.closers, client.Close)
		sinks = append(sinks, redisc.NewPublisher(client, redisc.PublisherConfig{
			Channel:   sc.RedisChannel,
			LatestKey: sc.RedisLatestKey,
			LatestTTL: sc.RedisLatestTTL,
			Stream:    sc.RedisStream,
		}))
	}

	if sc.TelegramToken != "" {
		sender := notify.NewTelegramSender(sc.TelegramToken, sc.TelegramChatID)
		sinks = append(sinks, notify.NewNotifier(sender, sc.TelegramMaxPerCycle))
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logger.Info("sinks configured", zap.Strings("sinks", names))

	return sink.NewMulti(sinks...), seqStore, nil
}
