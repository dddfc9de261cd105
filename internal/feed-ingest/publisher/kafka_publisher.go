package publisher

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/radieske/odds-feed-router/internal/shared/kafka"
	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// KafkaPublisher encapsula o writer Kafka e o logger.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewKafkaPublisher cria um publisher pro tópico de entrada do roteador.
// A função lê a lista de brokers, opcionalmente garante a existência do
// tópico em ambientes de desenvolvimento, e inicializa o writer com timeouts.
func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	if len(brokers) == 0 {
		log.Fatal("kafka brokers not provided")
	}

	// Contexto com timeout curto para operações de controle (quando aplicáveis).
	ctrlCtx, ctrlCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ctrlCancel()

	// Criação de tópico apenas quando APP_ENV indica ambiente local ou dev.
	// Esse trecho usa o controller do cluster para emitir o CreateTopics.
	if env := os.Getenv("APP_ENV"); env == "local" || env == "dev" {
		conn, err := kafka.DialContext(ctrlCtx, "tcp", brokers[0])
		if err != nil {
			log.Fatal("failed to connect to kafka", zap.Error(err))
		}
		defer conn.Close()

		controller, err := conn.Controller()
		if err != nil {
			log.Fatal("failed to get kafka controller", zap.Error(err))
		}

		controllerAddr := fmt.Sprintf("%s:%d", controller.Host, controller.Port)
		cconn, err := kafka.DialContext(ctrlCtx, "tcp", controllerAddr)
		if err != nil {
			log.Fatal("failed to dial controller", zap.Error(err))
		}
		defer cconn.Close()

		cfg := kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}

		if err := cconn.CreateTopics(cfg); err != nil && !strings.Contains(err.Error(), "already exists") {
			log.Warn("failed to create kafka topic", zap.String("topic", topic), zap.Error(err))
		} else if err == nil {
			log.Info("kafka topic created", zap.String("topic", topic))
		}
	}

	return &KafkaPublisher{
		writer: sharedkafka.NewWriter(brokers, topic),
		log:    log,
	}
}

// envelopeHeaders converte o roteamento do envelope nos headers Kafka que
// o roteador lê. Node id só acompanha tenant id; o default de broadcast
// fica por conta do consumidor.
func envelopeHeaders(env feed.Envelope) []kafka.Header {
	headers := []kafka.Header{
		{Key: feed.HeaderSportURN, Value: []byte(env.SportURN)},
	}
	if env.TenantID != "" {
		headers = append(headers, kafka.Header{Key: feed.HeaderTenantID, Value: []byte(env.TenantID)})
		if env.NodeID != "" {
			headers = append(headers, kafka.Header{Key: feed.HeaderNodeID, Value: []byte(env.NodeID)})
		}
	}
	if env.ProfileID != nil {
		headers = append(headers, kafka.Header{Key: feed.HeaderProfileID, Value: []byte(strconv.FormatInt(*env.ProfileID, 10))})
	}
	return headers
}

// Publish valida o envelope e envia o payload XML pro tópico configurado.
// A chave da mensagem usa o event id do odds_change para manter a ordem
// por fixture dentro da partição.
func (p *KafkaPublisher) Publish(ctx context.Context, env feed.Envelope) error {
	if env.SportURN == "" {
		return fmt.Errorf("envelope without sport urn")
	}
	msg, err := feed.DecodeXML([]byte(env.Payload))
	if err != nil {
		return fmt.Errorf("decode odds_change payload: %w", err)
	}

	if err := sharedkafka.Write(ctx, p.writer, msg.EventID, []byte(env.Payload), envelopeHeaders(env)); err != nil {
		p.log.Error("failed to publish odds change", zap.Error(err))
		return err
	}

	p.log.Debug("published odds change",
		zap.String("event_id", msg.EventID),
		zap.String("sport_urn", env.SportURN),
	)
	return nil
}

// Close finaliza o writer e libera recursos associados.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
