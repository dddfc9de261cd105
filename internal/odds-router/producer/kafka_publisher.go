package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// KafkaMessagePublisher publica o feed nos tópicos por tenant usando um
// writer compartilhado. O tópico é resolvido por mensagem
// (prefixo + tenantId) e a chave é o event id, o que preserva a ordem
// por fixture dentro de cada tenant.
type KafkaMessagePublisher struct {
	writer      *kafka.Writer
	topicPrefix string
	log         *zap.Logger
}

func NewKafkaMessagePublisher(brokers []string, topicPrefix string, log *zap.Logger) *KafkaMessagePublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Compression:            kafka.Lz4,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
	}

	return &KafkaMessagePublisher{
		writer:      writer,
		topicPrefix: topicPrefix,
		log:         log,
	}
}

func (p *KafkaMessagePublisher) Publish(ctx context.Context, msg *feed.OddsChange, sportID int64, nodeID, tenantID string, headers map[string]any) error {
	value, err := feed.EncodeXML(msg)
	if err != nil {
		return fmt.Errorf("encode odds_change: %w", err)
	}

	pairs := headerPairs(msg, sportID, nodeID, headers)
	kafkaHeaders := make([]kafka.Header, len(pairs))
	for i, pair := range pairs {
		kafkaHeaders[i] = kafka.Header{Key: pair[0], Value: []byte(pair[1])}
	}

	kmsg := kafka.Message{
		Topic:   p.topicPrefix + tenantID,
		Key:     []byte(msg.EventID),
		Value:   value,
		Time:    time.Now(),
		Headers: kafkaHeaders,
	}

	if err := p.writer.WriteMessages(ctx, kmsg); err != nil {
		p.log.Error("failed to publish odds change",
			zap.String("tenant_id", tenantID),
			zap.String("event_id", msg.EventID),
			zap.Error(err),
		)
		return err
	}

	p.log.Debug("published odds change",
		zap.String("tenant_id", tenantID),
		zap.String("event_id", msg.EventID),
		zap.String("node_id", nodeID),
	)
	return nil
}

// Close finaliza o writer e libera recursos associados.
func (p *KafkaMessagePublisher) Close() error {
	return p.writer.Close()
}
