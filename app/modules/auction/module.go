package auction

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctionhandlers "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/handlers"
	"github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/notify"
	auctionqueue "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/queue"
	"github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/realtime"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	auctionrouter "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/router"
	"github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/season"
	"github.com/Black-And-White-Club/bulk-auction/app/modules/auth"
	"github.com/Black-And-White-Club/bulk-auction/config"
	"github.com/Black-And-White-Club/bulk-auction/internal/eventbus"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

const (
	RealtimeBackendBus   = "bus"
	RealtimeBackendRedis = "redis"
)

type rosterSink interface {
	auctionqueue.RosterSink
	io.Closer
}

// Module represents the auction module.
type Module struct {
	Service auctionservice.Service
	Router  *auctionrouter.AuctionRouter
	Hub     *realtime.Hub

	handlers   *auctionhandlers.AuctionHandlers
	auth       *auth.Module
	queue      auctionqueue.QueueService
	redis      *redis.Client
	redisRelay *realtime.RedisRelay
	roster     rosterSink
	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewModule creates and initializes the auction module.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	bus eventbus.EventBus,
	router *message.Router,
	authModule *auth.Module,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "Initializing auction module",
		attr.String("realtime_backend", cfg.Realtime.Backend),
		attr.Bool("queue_enabled", cfg.Queue.Enabled),
	)

	mode, err := auctiondomain.ParseSettlementMode(cfg.Auction.SettlementMode)
	if err != nil {
		return nil, err
	}

	m := &Module{auth: authModule, logger: logger}

	// 1. Realtime hub and the broadcaster that feeds it
	m.Hub = realtime.NewHub(cfg.Realtime.SubscriberBuf, logger, obs.Metrics)
	var broadcaster auctionservice.Broadcaster
	relayHub := m.Hub
	switch cfg.Realtime.Backend {
	case RealtimeBackendRedis:
		m.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		broadcaster = realtime.NewRedisBroadcaster(m.redis)
		m.redisRelay = realtime.NewRedisRelay(m.redis, m.Hub, logger)
		relayHub = nil
	case RealtimeBackendBus, "":
		broadcaster = realtime.NewBusBroadcaster(bus)
	default:
		return nil, fmt.Errorf("unknown realtime backend %q", cfg.Realtime.Backend)
	}

	// 2. Season model adapters
	directory := season.NewStaticDirectory(cfg.Auction.StartingBalance, cfg.Auction.RosterSlotsMax)
	if len(cfg.Kafka.Brokers) > 0 {
		m.roster = season.NewKafkaRosterSink(season.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.RosterTopic), logger)
	} else {
		m.roster = season.NewLogRosterSink(logger)
	}
	notifier := notify.NewBusNotifier(bus)
	repo := auctiondb.NewRepository(db)

	// 3. Job scheduling
	var jobs auctionservice.JobScheduler
	if cfg.Queue.Enabled {
		q, err := auctionqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, cfg.Queue.MaxWorkers, obs.Metrics, auctionqueue.Deps{
			Publisher:  bus,
			Rounds:     repo,
			Notifier:   notifier,
			RosterSink: m.roster,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize auction queue: %w", err)
		}
		m.queue = q
		jobs = q
	} else {
		jobs = auctionqueue.NewInlineScheduler(logger, m.roster)
	}

	// 4. Service
	m.Service = auctionservice.NewAuctionService(repo, logger, obs.Metrics, tracer, db, auctionservice.Ports{
		Authorizer:  authModule.Service,
		Seasons:     directory,
		Broadcaster: broadcaster,
		Notifier:    notifier,
		Jobs:        jobs,
	}, auctionservice.Config{
		DefaultTrack:   cfg.Auction.CurrencyTrack,
		SettlementMode: mode,
	})

	// 5. Handlers and router
	streamer := realtime.NewWebsocketServer(m.Hub, cfg.Realtime.AllowedOrigins, logger)
	m.handlers = auctionhandlers.NewAuctionHandlers(m.Service, streamer, logger, tracer, cfg.Auction.CurrencyTrack)

	m.Router = auctionrouter.NewAuctionRouter(logger, router, bus, tracer, obs.Registry)
	if err := m.Router.Configure(ctx, m.handlers, relayHub); err != nil {
		return nil, fmt.Errorf("failed to configure auction router: %w", err)
	}

	return m, nil
}

// Mount registers the HTTP routes.
func (m *Module) Mount(r chi.Router) {
	auctionhandlers.Mount(r, m.handlers, auctionhandlers.Middlewares{
		CORS:         m.auth.CORS(),
		Authenticate: m.auth.Authenticate(),
		RateLimit:    m.auth.RateLimit(),
	})
}

// Start starts the queue workers and the Redis relay.
func (m *Module) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel

	if m.queue != nil {
		if err := m.queue.Start(ctx); err != nil {
			return err
		}
	}
	if m.redisRelay != nil {
		if err := m.redisRelay.Start(ctx); err != nil {
			return err
		}
	}
	m.logger.InfoContext(ctx, "Auction module started")
	return nil
}

// Ready checks the job queue. It is always ready when the queue is disabled.
func (m *Module) Ready(ctx context.Context) error {
	if m.queue == nil {
		return nil
	}
	return m.queue.HealthCheck(ctx)
}

// Close shuts down the auction module.
func (m *Module) Close(ctx context.Context) error {
	m.logger.Info("Stopping auction module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if m.queue != nil {
		keep(m.queue.Stop(ctx))
	}
	m.Hub.Close()
	if m.redis != nil {
		keep(m.redis.Close())
	}
	if m.roster != nil {
		keep(m.roster.Close())
	}

	if firstErr != nil {
		m.logger.Error("Error stopping auction module", attr.Error(firstErr))
		return firstErr
	}
	m.logger.Info("Auction module stopped")
	return nil
}
