// Package publisher implementa o roteamento das mensagens odds_change:
// resolve os tenants de destino, aplica boost por perfil e publica no
// broker, um canal por tenant.
package publisher

import (
	"context"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// BroadcastNodeID identifica "todos os nós" de um tenant no header de nó.
const BroadcastNodeID = "-"

type routeKind int

const (
	routeBroadcast routeKind = iota
	routeProfile
	routeTenant
)

// RouteParameters descreve o destino de um publish. Sempre construa pelos
// construtores abaixo; o zero value equivale a broadcast.
type RouteParameters struct {
	kind      routeKind
	tenantID  string
	profileID int64
	nodeID    string
}

// Broadcast roteia para todos os tenants ativos.
func Broadcast() RouteParameters {
	return RouteParameters{kind: routeBroadcast, nodeID: BroadcastNodeID}
}

// ForProfile roteia para todos os tenants de um perfil.
func ForProfile(profileID int64) RouteParameters {
	return RouteParameters{kind: routeProfile, profileID: profileID, nodeID: BroadcastNodeID}
}

// ForTenant roteia para um tenant e um nó específicos.
func ForTenant(tenantID, nodeID string) RouteParameters {
	return RouteParameters{kind: routeTenant, tenantID: tenantID, nodeID: nodeID}
}

// MessagePublisher é o porto de saída pro broker (Kafka em produção,
// NATS ou noop conforme FEED_BROKER).
type MessagePublisher interface {
	Publish(ctx context.Context, msg *feed.OddsChange, sportID int64, nodeID, tenantID string, headers map[string]any) error
}
