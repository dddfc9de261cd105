package publisher

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/odds-feed-router/internal/odds-router/boost"
	"github.com/radieske/odds-feed-router/internal/odds-router/tenant"
	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
	"github.com/radieske/odds-feed-router/pkg/urn"
)

// TenantIndex entrega o snapshot corrente do índice tenant -> perfil.
type TenantIndex interface {
	Current() tenant.Snapshot
}

// MarketMappingCache responde se algum dos mercados é primário no esporte.
type MarketMappingCache interface {
	AnyPrimaryMarket(ctx context.Context, marketIDs []int, sportURN string) (bool, error)
}

// Archiver registra o que foi publicado; profileID nil marca o fan-out raw.
type Archiver interface {
	Archive(profileID *int64, msg *feed.OddsChange)
}

// Router decide quem recebe cada odds_change e com quais odds. As três
// rotas: tenant único, todos os tenants de um perfil, broadcast geral.
type Router struct {
	log        *zap.Logger
	broker     MessagePublisher
	tenants    TenantIndex
	catalog    boost.Catalog
	mapping    MarketMappingCache
	applicator *boost.Applicator
	archiver   Archiver

	// Callbacks de métricas, ligados no main (podem ficar nil)
	OnPublished func()
	OnDropped   func(reason string)
	OnBoosted   func()
}

func NewRouter(
	log *zap.Logger,
	broker MessagePublisher,
	tenants TenantIndex,
	catalog boost.Catalog,
	mapping MarketMappingCache,
	applicator *boost.Applicator,
	archiver Archiver,
) *Router {
	return &Router{
		log:        log,
		broker:     broker,
		tenants:    tenants,
		catalog:    catalog,
		mapping:    mapping,
		applicator: applicator,
		archiver:   archiver,
	}
}

// Publish roteia uma mensagem conforme os parâmetros de rota. Headers do
// chamador podem ser nil. Falha de broker num tenant não interrompe o
// fan-out dos demais; os erros voltam agregados.
func (r *Router) Publish(ctx context.Context, msg *feed.OddsChange, sportURN string, route RouteParameters, headers map[string]any) error {
	sport, err := urn.Parse(sportURN)
	if err != nil {
		return fmt.Errorf("parse sport urn: %w", err)
	}

	// Um snapshot por publish: todos os lookups enxergam o mesmo índice
	snap := r.tenants.Current()

	switch route.kind {
	case routeTenant:
		return r.publishToTenant(ctx, msg, sportURN, sport.ID, snap, route, headers)
	case routeProfile:
		return r.publishToProfile(ctx, msg, sportURN, sport.ID, snap, route.profileID, headers)
	default:
		return r.broadcastToAll(ctx, msg, sportURN, sport.ID, snap, headers)
	}
}

// PublishDefault é o Publish sem headers de chamador.
func (r *Router) PublishDefault(ctx context.Context, msg *feed.OddsChange, sportURN string, route RouteParameters) error {
	return r.Publish(ctx, msg, sportURN, route, nil)
}

// publishToTenant entrega para um tenant num nó específico. Esse caminho
// não arquiva: é redelivery/recovery, o histórico já tem a mensagem.
func (r *Router) publishToTenant(ctx context.Context, msg *feed.OddsChange, sportURN string, sportID int64, snap tenant.Snapshot, route RouteParameters, headers map[string]any) error {
	profileID, ok := snap.Get(route.tenantID)
	if !ok {
		r.log.Warn("tenant not found in active index, skipping publication",
			zap.String("tenant_id", route.tenantID),
			zap.String("event_id", msg.EventID),
		)
		r.dropped("unknown_tenant")
		return nil
	}

	out, err := r.resolveBoosted(ctx, msg, sportURN, profileID)
	if err != nil {
		return fmt.Errorf("tenant %s: %w", route.tenantID, err)
	}

	if err := r.broker.Publish(ctx, out, sportID, route.nodeID, route.tenantID, headers); err != nil {
		return fmt.Errorf("tenant %s: %w", route.tenantID, err)
	}
	r.published()
	return nil
}

func (r *Router) publishToProfile(ctx context.Context, msg *feed.OddsChange, sportURN string, sportID int64, snap tenant.Snapshot, profileID int64, headers map[string]any) error {
	out, err := r.resolveBoosted(ctx, msg, sportURN, profileID)
	if err != nil {
		return fmt.Errorf("profile %d: %w", profileID, err)
	}

	var errs []error
	for _, tenantID := range snap.TenantsOf(profileID) {
		if err := r.broker.Publish(ctx, out, sportID, BroadcastNodeID, tenantID, headers); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
			continue
		}
		r.published()
	}

	r.archive(&profileID, out)
	return errors.Join(errs...)
}

// broadcastToAll agrupa os tenants por perfil e resolve o boost uma vez
// por perfil. Perfil sem boost recebe a mensagem original, sem clone.
func (r *Router) broadcastToAll(ctx context.Context, msg *feed.OddsChange, sportURN string, sportID int64, snap tenant.Snapshot, headers map[string]any) error {
	if !r.isBoostApplicable(ctx, msg, sportURN) {
		return r.publishRawToAll(ctx, msg, sportID, snap, headers)
	}

	cfgs, err := r.catalog.ForFixtures(ctx, []string{msg.EventID})
	if err != nil {
		r.log.Warn("boost lookup failed, publishing without boosts",
			zap.String("event_id", msg.EventID),
			zap.Error(err),
		)
		return r.publishRawToAll(ctx, msg, sportID, snap, headers)
	}
	if len(cfgs) == 0 {
		return r.publishRawToAll(ctx, msg, sportID, snap, headers)
	}

	boostsByProfile := boost.GroupByProfile(cfgs)

	var errs []error
	for profileID, tenants := range snap.GroupByProfile() {
		// go <1.22: cópia por iteração; o ponteiro arquivado abaixo não
		// pode compartilhar a variável do range entre os perfis
		profileID := profileID
		out := msg
		if profileBoosts, ok := boostsByProfile[profileID]; ok {
			boosted, err := r.applicator.Apply(msg, profileBoosts)
			if err != nil {
				errs = append(errs, fmt.Errorf("profile %d: %w", profileID, err))
				continue
			}
			out = boosted
			r.boosted()
		}

		for _, tenantID := range tenants {
			if err := r.broker.Publish(ctx, out, sportID, BroadcastNodeID, tenantID, headers); err != nil {
				errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
				continue
			}
			r.published()
		}

		r.archive(&profileID, out)
	}
	return errors.Join(errs...)
}

func (r *Router) publishRawToAll(ctx context.Context, msg *feed.OddsChange, sportID int64, snap tenant.Snapshot, headers map[string]any) error {
	var errs []error
	for _, tenantID := range snap.TenantIDs() {
		if err := r.broker.Publish(ctx, msg, sportID, BroadcastNodeID, tenantID, headers); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
			continue
		}
		r.published()
	}

	r.archive(nil, msg)
	return errors.Join(errs...)
}

// resolveBoosted decide o que publicar para um perfil: a mensagem original
// quando boost não se aplica, não há config ou o catálogo falhou
// (fail-open); o clone com boost nos demais casos.
func (r *Router) resolveBoosted(ctx context.Context, msg *feed.OddsChange, sportURN string, profileID int64) (*feed.OddsChange, error) {
	if !r.isBoostApplicable(ctx, msg, sportURN) {
		return msg, nil
	}

	cfgs, err := r.catalog.ForProfileAndFixture(ctx, profileID, msg.EventID)
	if err != nil {
		r.log.Warn("boost lookup failed, publishing without boosts",
			zap.Int64("profile_id", profileID),
			zap.String("event_id", msg.EventID),
			zap.Error(err),
		)
		return msg, nil
	}
	if len(cfgs) == 0 {
		return msg, nil
	}

	boosted, err := r.applicator.Apply(msg, boost.MapByKey(cfgs))
	if err != nil {
		return nil, err
	}
	r.boosted()
	return boosted, nil
}

// isBoostApplicable: só PREMATCH com pelo menos um mercado primário do
// esporte entra no caminho de boost. Falha do cache conta como não
// primário e a mensagem segue sem boost.
func (r *Router) isBoostApplicable(ctx context.Context, msg *feed.OddsChange, sportURN string) bool {
	if msg.Product != feed.ProductPrematch {
		return false
	}

	markets := msg.Markets()
	if len(markets) == 0 {
		return false
	}

	ids := make([]int, len(markets))
	for i, mk := range markets {
		ids[i] = mk.ID
	}

	ok, err := r.mapping.AnyPrimaryMarket(ctx, ids, sportURN)
	if err != nil {
		r.log.Warn("primary market lookup failed",
			zap.String("sport_urn", sportURN),
			zap.String("event_id", msg.EventID),
			zap.Error(err),
		)
		return false
	}
	return ok
}

func (r *Router) archive(profileID *int64, msg *feed.OddsChange) {
	if r.archiver == nil {
		return
	}
	r.archiver.Archive(profileID, msg)
}

func (r *Router) published() {
	if r.OnPublished != nil {
		r.OnPublished()
	}
}

func (r *Router) dropped(reason string) {
	if r.OnDropped != nil {
		r.OnDropped(reason)
	}
}

func (r *Router) boosted() {
	if r.OnBoosted != nil {
		r.OnBoosted()
	}
}
