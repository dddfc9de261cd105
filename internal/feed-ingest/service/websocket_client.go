package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// EnvelopePublisher publica envelopes validados no tópico de entrada do
// roteador.
type EnvelopePublisher interface {
	Publish(ctx context.Context, env feed.Envelope) error
}

// WSClient consome o feed de odds do fornecedor via WebSocket e publica
// os envelopes recebidos no broker de entrada.
type WSClient struct {
	URL       string            // URL do endpoint WebSocket do fornecedor
	Log       *zap.Logger       // Logger estruturado
	Publisher EnvelopePublisher // Publisher do tópico de entrada

	// Callbacks de métricas, opcionais.
	OnReceived  func()
	OnPublished func()
}

// Start inicia o loop de conexão e escuta do WebSocket.
// Em caso de desconexão, tenta reconectar automaticamente com backoff.
func (c *WSClient) Start(ctx context.Context) {
	for {
		if err := c.connectAndListen(ctx); err != nil {
			c.Log.Warn("connection closed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			c.Log.Info("context canceled, stopping WS client")
			return
		case <-time.After(3 * time.Second): // aguarda antes de reconectar
		}
	}
}

// connectAndListen estabelece a conexão WebSocket e processa mensagens
// recebidas. Cada frame é um envelope JSON com o payload XML do feed.
func (c *WSClient) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.Log.Info("connected to feed WS", zap.String("url", c.URL))

	// ReadMessage não enxerga o contexto; fechar a conexão é o que
	// desbloqueia a leitura no shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			c.Log.Error("read message failed", zap.Error(err))
			return err
		}
		if c.OnReceived != nil {
			c.OnReceived()
		}

		var env feed.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.Log.Warn("invalid envelope", zap.Error(err))
			continue
		}

		// Publica o envelope recebido no Kafka
		if err := c.Publisher.Publish(ctx, env); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.Log.Error("failed to publish to Kafka", zap.Error(err))
			continue
		}
		if c.OnPublished != nil {
			c.OnPublished()
		}
	}
}
