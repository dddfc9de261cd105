package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/odds-feed-router/internal/odds-router/archive"
	"github.com/radieske/odds-feed-router/internal/odds-router/boost"
	"github.com/radieske/odds-feed-router/internal/odds-router/consumer"
	"github.com/radieske/odds-feed-router/internal/odds-router/httpapi"
	"github.com/radieske/odds-feed-router/internal/odds-router/mapping"
	"github.com/radieske/odds-feed-router/internal/odds-router/producer"
	"github.com/radieske/odds-feed-router/internal/odds-router/publisher"
	"github.com/radieske/odds-feed-router/internal/odds-router/repository"
	"github.com/radieske/odds-feed-router/internal/odds-router/tenant"
	sharedcache "github.com/radieske/odds-feed-router/internal/shared/cache"
	"github.com/radieske/odds-feed-router/internal/shared/config"
	"github.com/radieske/odds-feed-router/internal/shared/db"
	sharedkafka "github.com/radieske/odds-feed-router/internal/shared/kafka"
	"github.com/radieske/odds-feed-router/internal/shared/logger"
	"github.com/radieske/odds-feed-router/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Inicializa dependências: Postgres (tenants + boosts) e Redis (mapping + feed log)
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	if err := repository.RunMigrations(pg); err != nil {
		log.Fatal("run migrations", zap.Error(err))
	}

	redisClient, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Índice tenant -> perfil com refresh periódico em background
	tenantRepo := repository.NewTenantRepo(pg)
	index := tenant.NewIndex(log, tenantRepo)
	go index.Run(ctx, cfg.TenantRefreshInterval)

	// Broker de saída do fan-out por tenant
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	var broker publisher.MessagePublisher
	switch cfg.FeedBroker {
	case "nats":
		natsPub, err := producer.NewNATSMessagePublisher(cfg.NATSURL, cfg.TenantTopicPrefix, log)
		if err != nil {
			log.Fatal("nats connect", zap.Error(err))
		}
		defer natsPub.Close()
		broker = natsPub
	case "noop":
		broker = producer.NoopMessagePublisher{}
	default:
		kafkaPub := producer.NewKafkaMessagePublisher(brokers, cfg.TenantTopicPrefix, log)
		defer kafkaPub.Close()
		broker = kafkaPub
	}

	// Arquivador do feed publicado (Redis Stream, desligado por default)
	sink := archive.NewRedisStreamSink(redisClient, cfg.FeedLogStream, cfg.FeedLogMaxLen)
	arch := archive.New(log, sink, cfg.FeedLogEnabled)

	boostRepo := repository.NewBoostRepo(pg)
	mappingCache := mapping.NewCache(redisClient)
	applicator := boost.NewApplicator(boost.NewRegistry())

	// Métricas Prometheus para monitoramento do roteamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_router_messages_consumed_total", Help: "mensagens consumidas do feed"})
	routed := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_router_messages_routed_total", Help: "mensagens roteadas"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_router_tenant_publishes_total", Help: "publicações por tenant"})
	boosted := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_router_boosts_applied_total", Help: "mensagens com boost aplicado"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_router_messages_dropped_total", Help: "mensagens descartadas por motivo"}, []string{"reason"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_router_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, routed, published, boosted, dropped, errorsBy)

	// Instancia o router, conectando callbacks de métricas
	router := publisher.NewRouter(log, broker, index, boostRepo, mappingCache, applicator, arch)
	router.OnPublished = func() { published.Inc() }
	router.OnDropped = func(reason string) { dropped.WithLabelValues(reason).Inc() }
	router.OnBoosted = func() { boosted.Inc() }

	// Consumer do tópico de entrada (consumer group odds-router)
	reader := sharedkafka.NewReader(brokers, cfg.TopicOddsChanges, cfg.ConsumerGroup)
	defer reader.Close()

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Publisher:  router,
		OnConsumed: func() { consumed.Inc() },
		OnRouted:   func() { routed.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// API de operação: tenants, perfis, boosts e mapping
	api := &httpapi.API{Tenants: index, Boosts: boostRepo, Mapping: mappingCache}
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("http api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http api server error", zap.Error(err))
		}
	}()

	// Servidor de métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	log.Info("odds-router started",
		zap.String("topic", cfg.TopicOddsChanges),
		zap.String("feed_broker", cfg.FeedBroker),
		zap.Bool("feed_log", cfg.FeedLogEnabled),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("router stopped with error", zap.Error(err))
	}

	// Encerramento: fecha os servidores HTTP e espera o arquivador drenar
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	arch.Wait()

	log.Info("odds-router stopped")
}
