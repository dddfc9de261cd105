// Package tenant mantém o índice tenant -> perfil usado no roteamento.
package tenant

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Tenant é uma linha da tabela tenants. ProfileID nulo significa tenant
// fora de qualquer perfil de boost; ele fica fora do índice e não recebe
// publicação.
type Tenant struct {
	ID        string
	ProfileID sql.NullInt64
}

// Store é a fonte do índice (Postgres em produção).
type Store interface {
	FindAllTenants(ctx context.Context) ([]Tenant, error)
}

// Snapshot é uma visão imutável do índice. Cada publish faz todos os
// lookups sobre o mesmo snapshot, mesmo com refresh concorrente.
type Snapshot struct {
	byTenant  map[string]int64
	byProfile map[int64][]string
}

// NewSnapshot monta o snapshot com o índice reverso por perfil já
// calculado. Listas saem ordenadas pra dar fan-out determinístico.
func NewSnapshot(byTenant map[string]int64) Snapshot {
	tenants := make(map[string]int64, len(byTenant))
	byProfile := make(map[int64][]string)
	for id, profileID := range byTenant {
		tenants[id] = profileID
		byProfile[profileID] = append(byProfile[profileID], id)
	}
	for _, ids := range byProfile {
		sort.Strings(ids)
	}
	return Snapshot{byTenant: tenants, byProfile: byProfile}
}

func (s Snapshot) Get(tenantID string) (int64, bool) {
	profileID, ok := s.byTenant[tenantID]
	return profileID, ok
}

func (s Snapshot) TenantIDs() []string {
	out := make([]string, 0, len(s.byTenant))
	for id := range s.byTenant {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s Snapshot) TenantsOf(profileID int64) []string {
	return s.byProfile[profileID]
}

func (s Snapshot) GroupByProfile() map[int64][]string {
	return s.byProfile
}

func (s Snapshot) Len() int {
	return len(s.byTenant)
}

// Index publica o snapshot corrente com troca atômica de referência.
// O refresher roda em background; falha de refresh mantém o snapshot
// anterior no ar.
type Index struct {
	log   *zap.Logger
	store Store
	snap  atomic.Pointer[Snapshot]
}

func NewIndex(log *zap.Logger, store Store) *Index {
	ix := &Index{log: log, store: store}
	empty := NewSnapshot(nil)
	ix.snap.Store(&empty)
	return ix
}

// Current nunca retorna nulo; antes do primeiro refresh o snapshot é vazio.
func (ix *Index) Current() Snapshot {
	return *ix.snap.Load()
}

// Refresh recarrega o índice do store e troca o snapshot numa operação só.
// Tenant sem perfil fica de fora; em id duplicado vale a primeira linha.
func (ix *Index) Refresh(ctx context.Context) error {
	tenants, err := ix.store.FindAllTenants(ctx)
	if err != nil {
		return fmt.Errorf("load tenants: %w", err)
	}

	byTenant := make(map[string]int64, len(tenants))
	for _, t := range tenants {
		if !t.ProfileID.Valid {
			continue
		}
		if _, ok := byTenant[t.ID]; ok {
			continue
		}
		byTenant[t.ID] = t.ProfileID.Int64
	}

	snap := NewSnapshot(byTenant)
	ix.snap.Store(&snap)
	ix.log.Info("tenant profile index refreshed", zap.Int("tenants", snap.Len()))
	return nil
}

// Run faz um refresh imediato e depois segue no intervalo configurado até
// o contexto encerrar.
func (ix *Index) Run(ctx context.Context, interval time.Duration) {
	if err := ix.Refresh(ctx); err != nil {
		ix.log.Error("failed to refresh tenant profile index", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ix.Refresh(ctx); err != nil {
				ix.log.Error("failed to refresh tenant profile index", zap.Error(err))
			}
		}
	}
}
