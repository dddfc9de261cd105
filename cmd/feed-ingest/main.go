package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/odds-feed-router/internal/feed-ingest/publisher"
	"github.com/radieske/odds-feed-router/internal/feed-ingest/service"
	"github.com/radieske/odds-feed-router/internal/shared/config"
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

	log.Info("Kafka brokers", zap.String("brokers", cfg.KafkaBrokers))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Kafka Publisher do tópico de entrada do roteador
	pub := publisher.NewKafkaPublisher(
		strings.Split(cfg.KafkaBrokers, ","),
		cfg.TopicOddsChanges,
		log,
	)
	defer pub.Close()

	// Métricas Prometheus do consumo do feed
	received := prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_ingest_frames_received_total", Help: "frames WS recebidos"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_ingest_envelopes_published_total", Help: "envelopes publicados no Kafka"})
	prometheus.MustRegister(received, published)

	// WS Client do feed do fornecedor
	wsClient := &service.WSClient{
		URL:         cfg.SimulatorWSURL,
		Log:         log,
		Publisher:   pub,
		OnReceived:  func() { received.Inc() },
		OnPublished: func() { published.Inc() },
	}
	wsDone := make(chan struct{})
	go func() {
		wsClient.Start(ctx)
		close(wsDone)
	}()

	// Métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	<-ctx.Done()
	log.Info("shutdown signal received")
	<-wsDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
}
