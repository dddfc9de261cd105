// Package consumer liga o tópico de entrada ao router: lê odds_changes,
// decodifica o XML canônico e resolve a rota pelos headers da mensagem.
package consumer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/odds-feed-router/internal/odds-router/publisher"
	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// MessageReader é o que o loop precisa do kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Publisher é o router visto pelo consumer.
type Publisher interface {
	Publish(ctx context.Context, msg *feed.OddsChange, sportURN string, route publisher.RouteParameters, headers map[string]any) error
}

// Processor consome o tópico de entrada e roteia cada mensagem
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log       *zap.Logger
	Reader    MessageReader
	Publisher Publisher

	OnConsumed func()       // métricas (counter++)
	OnRouted   func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e roteamento
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		msg, err := feed.DecodeXML(m.Value)
		if err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		sportURN, route, headers, err := RouteFromHeaders(m.Headers)
		if err != nil {
			p.Log.Warn("cannot derive route, skipping",
				zap.String("event_id", msg.EventID),
				zap.Error(err),
			)
			if p.OnError != nil {
				p.OnError("route")
			}
			continue
		}

		// Mensagem venenosa não derruba o loop; o erro fica no log/métrica
		if err := p.Publisher.Publish(ctx, msg, sportURN, route, headers); err != nil {
			p.Log.Error("failed to route odds change",
				zap.String("event_id", msg.EventID),
				zap.Error(err),
			)
			if p.OnError != nil {
				p.OnError("publish")
			}
			continue
		}
		if p.OnRouted != nil {
			p.OnRouted()
		}
	}
}

// RouteFromHeaders deriva a rota da mensagem: tenant+node ganham de
// profile, que ganha de broadcast. Headers que não são de roteamento
// seguem adiante pro fan-out.
func RouteFromHeaders(headers []kafka.Header) (string, publisher.RouteParameters, map[string]any, error) {
	var (
		sportURN   string
		tenantID   string
		nodeID     = publisher.BroadcastNodeID
		profileID  int64
		hasProfile bool
	)
	passthrough := make(map[string]any)

	for _, h := range headers {
		value := string(h.Value)
		switch h.Key {
		case feed.HeaderSportURN:
			sportURN = value
		case feed.HeaderTenantID:
			tenantID = value
		case feed.HeaderNodeID:
			nodeID = value
		case feed.HeaderProfileID:
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return "", publisher.RouteParameters{}, nil, fmt.Errorf("invalid %s header %q: %w", feed.HeaderProfileID, value, err)
			}
			profileID, hasProfile = id, true
		default:
			passthrough[h.Key] = value
		}
	}

	if sportURN == "" {
		return "", publisher.RouteParameters{}, nil, fmt.Errorf("missing %s header", feed.HeaderSportURN)
	}
	if len(passthrough) == 0 {
		passthrough = nil
	}

	switch {
	case tenantID != "":
		return sportURN, publisher.ForTenant(tenantID, nodeID), passthrough, nil
	case hasProfile:
		return sportURN, publisher.ForProfile(profileID), passthrough, nil
	default:
		return sportURN, publisher.Broadcast(), passthrough, nil
	}
}
