// Package archive grava o histórico bruto do feed quando o arquivamento
// está habilitado no boot. O caminho de publicação nunca espera nem falha
// por causa do arquivamento.
package archive

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// Entry é o registro persistido por mensagem arquivada. ProfileID nulo
// identifica o fan-out sem boost (caminho raw do broadcast).
type Entry struct {
	ID        string
	EventID   string
	Timestamp int64
	Payload   string
	ProfileID *int64
}

// Sink é o destino das entradas (Redis Stream em produção).
type Sink interface {
	Save(ctx context.Context, e Entry) error
}

// Archiver serializa de forma síncrona e grava de forma assíncrona,
// engolindo qualquer erro. Enabled é decidido no boot e não muda.
type Archiver struct {
	Log       *zap.Logger
	Sink      Sink
	Enabled   bool
	Serialize func(*feed.OddsChange) ([]byte, error)
	Timeout   time.Duration

	wg sync.WaitGroup
}

func New(log *zap.Logger, sink Sink, enabled bool) *Archiver {
	return &Archiver{
		Log:       log,
		Sink:      sink,
		Enabled:   enabled,
		Serialize: feed.EncodeXML,
		Timeout:   2 * time.Second,
	}
}

// Archive registra a mensagem publicada para um perfil (nil no caminho
// raw). Desabilitado, nem o serializador é tocado.
func (a *Archiver) Archive(profileID *int64, msg *feed.OddsChange) {
	if !a.Enabled {
		return
	}

	payload, err := a.Serialize(msg)
	if err != nil {
		a.Log.Error("failed to serialize feed log entry",
			zap.String("event_id", msg.EventID),
			zap.Error(err),
		)
		return
	}

	e := Entry{
		ID:        uuid.NewString(),
		EventID:   msg.EventID,
		Timestamp: msg.Timestamp,
		Payload:   string(payload),
		ProfileID: profileID,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
		defer cancel()

		if err := a.Sink.Save(ctx, e); err != nil {
			a.Log.Error("failed to save feed log entry",
				zap.String("event_id", e.EventID),
				zap.Error(err),
			)
		}
	}()
}

// Wait segura o shutdown até as gravações pendentes terminarem.
func (a *Archiver) Wait() {
	a.wg.Wait()
}
