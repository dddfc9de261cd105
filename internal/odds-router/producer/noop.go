package producer

import (
	"context"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// NoopMessagePublisher descarta tudo (FEED_BROKER=noop, útil pra rodar o
// router sem broker em dry-run).
type NoopMessagePublisher struct{}

func (NoopMessagePublisher) Publish(ctx context.Context, msg *feed.OddsChange, sportID int64, nodeID, tenantID string, headers map[string]any) error {
	return nil
}

func (NoopMessagePublisher) Close() error {
	return nil
}
