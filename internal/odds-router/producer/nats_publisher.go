package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// NATSMessagePublisher é o adaptador alternativo de broker
// (FEED_BROKER=nats). Cada tenant vira um subject: prefixo + tenantId.
type NATSMessagePublisher struct {
	conn          *nats.Conn
	subjectPrefix string
	log           *zap.Logger
}

func NewNATSMessagePublisher(url, subjectPrefix string, log *zap.Logger) (*NATSMessagePublisher, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return &NATSMessagePublisher{
		conn:          nc,
		subjectPrefix: subjectPrefix,
		log:           log,
	}, nil
}

func (p *NATSMessagePublisher) Publish(ctx context.Context, msg *feed.OddsChange, sportID int64, nodeID, tenantID string, headers map[string]any) error {
	value, err := feed.EncodeXML(msg)
	if err != nil {
		return fmt.Errorf("encode odds_change: %w", err)
	}

	m := nats.NewMsg(p.subjectPrefix + tenantID)
	m.Data = value
	for _, pair := range headerPairs(msg, sportID, nodeID, headers) {
		m.Header.Set(pair[0], pair[1])
	}

	if err := p.conn.PublishMsg(m); err != nil {
		p.log.Error("failed to publish odds change",
			zap.String("tenant_id", tenantID),
			zap.String("event_id", msg.EventID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *NATSMessagePublisher) Close() error {
	p.conn.Close()
	return nil
}
