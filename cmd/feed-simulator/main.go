package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/odds-feed-router/internal/shared/config"
	"github.com/radieske/odds-feed-router/internal/shared/logger"
	"github.com/radieske/odds-feed-router/internal/shared/metrics"
	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Catálogo fixo de fixtures simulados para geração de odds
	fixtureCatalog = []fixture{
		{EventID: "sr:match:1001", SportURN: "sr:sport:1"},
		{EventID: "sr:match:1002", SportURN: "sr:sport:1"},
		{EventID: "sr:match:1003", SportURN: "sr:sport:1"},
		{EventID: "sr:match:2001", SportURN: "sr:sport:2"},
	}

	// Rotas de demonstração intercaladas no meio do broadcast
	demoTenants  = []string{"tenant-alpha", "tenant-beta"}
	demoProfiles = []int64{1, 2}

	// Métricas Prometheus para monitoramento de conexões e mensagens
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_sim_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_sim_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas",
	})
)

// fixture é uma partida simulada do catálogo
type fixture struct {
	EventID  string
	SportURN string
}

// Representa uma conexão de cliente WebSocket
type clientConn struct {
	id   string
	conn *websocket.Conn
}

// Estrutura responsável por gerenciar os clientes conectados via WebSocket
// e realizar broadcast de mensagens para todos eles.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{
		clients: make(map[string]*clientConn),
		log:     log,
	}
}

// Adiciona um novo cliente ao hub e incrementa a métrica de conexões
func (h *hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	wsConnections.Inc()
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

// Remove um cliente do hub e decrementa a métrica de conexões
func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

// Envia uma mensagem para todos os clientes conectados
func (h *hub) broadcast(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, c := range h.clients {
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
		} else {
			wsMessagesSent.Inc()
		}
	}
}

// gera uma odd aleatória entre min e max, com duas casas
func rnd(min, max float64) float64 {
	v := (rand.Float64() * (max - min)) + min
	return math.Round(v*100) / 100
}

// randomOddsChange monta um odds_change com os dois mercados do demo:
// 1x2 e totals. A cada quarta mensagem o produto vira LIVE.
func randomOddsChange(f fixture, n int) *feed.OddsChange {
	product := feed.ProductPrematch
	if n%4 == 3 {
		product = feed.ProductLive
	}
	return &feed.OddsChange{
		EventID:   f.EventID,
		Product:   product,
		Timestamp: time.Now().UnixMilli(),
		Odds: &feed.Odds{
			Markets: []feed.Market{
				{
					ID:        1,
					Status:    feed.MarketStatusActive,
					Favourite: true,
					Outcomes: []feed.Outcome{
						{ID: "1", Odds: rnd(1.40, 3.50), Active: true},
						{ID: "2", Odds: rnd(2.50, 4.50), Active: true},
						{ID: "3", Odds: rnd(2.00, 5.00), Active: true},
					},
				},
				{
					ID:         10,
					Specifiers: "total=2.5",
					Status:     feed.MarketStatusActive,
					Outcomes: []feed.Outcome{
						{ID: "12", Odds: rnd(1.60, 2.40), Active: true},
						{ID: "13", Odds: rnd(1.60, 2.40), Active: true},
					},
				},
			},
		},
	}
}

// routeFor intercala rotas de tenant e de perfil no meio do broadcast,
// pra exercitar os três caminhos do roteador.
func routeFor(n int) feed.Envelope {
	var env feed.Envelope
	switch {
	case n%7 == 5:
		env.ProfileID = &demoProfiles[n%len(demoProfiles)]
	case n%5 == 2:
		env.TenantID = demoTenants[n%len(demoTenants)]
		if n%2 == 0 {
			env.NodeID = "node-1"
		}
	}
	return env
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(wsConnections, wsMessagesSent)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h := newHub(log)

	// Gera e envia odds simuladas para todos os clientes conectados a cada 3 segundos
	go func() {
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		n := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, f := range fixtureCatalog {
					msg := randomOddsChange(f, n)
					payload, err := feed.EncodeXML(msg)
					if err != nil {
						log.Warn("encode odds_change failed", zap.Error(err))
						continue
					}
					env := routeFor(n)
					env.SportURN = f.SportURN
					env.Payload = string(payload)
					h.broadcast(env)
					n++
				}
			}
		}
	}()

	// Servidor público: só o /ws do feed
	appMux := http.NewServeMux()
	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := fmt.Sprintf("%d", time.Now().UnixNano())
		c := &clientConn{id: id, conn: conn}
		h.add(c)

		// Goroutine para manter a conexão viva e remover cliente ao desconectar
		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			_ = conn.SetReadDeadline(time.Time{})
			for {
				// Lê e descarta mensagens do cliente para manter o socket limpo
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	appSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           appMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("feed simulator running", zap.String("addr", appSrv.Addr), zap.String("paths", "/ws"))
		if err := appSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("public server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = appSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
