// Package httpapi expõe os endpoints REST de consulta do roteador:
// tenants, perfis, boosts por fixture e mercados primários.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/odds-feed-router/internal/odds-router/boost"
	"github.com/radieske/odds-feed-router/internal/odds-router/tenant"
)

// TenantView é a visão de tenants servida pela API. É o mesmo índice em
// memória usado no roteamento, não o banco.
type TenantView interface {
	Current() tenant.Snapshot
}

// PrimaryMarkets responde se um mercado é primário pra um esporte.
type PrimaryMarkets interface {
	IsPrimaryMarket(ctx context.Context, marketID int, sportURN string) (bool, error)
}

// API expõe os endpoints REST de consulta do roteador de odds
// Serve do índice em memória, do catálogo de boosts e do cache de mapping
type API struct {
	Tenants TenantView     // índice tenant -> perfil
	Boosts  boost.Catalog  // catálogo de boosts (Postgres)
	Mapping PrimaryMarkets // cache de mercados primários (Redis)
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/tenants", a.listTenants)                          // Lista tenants e seus perfis
	r.Get("/v1/tenants/{id}", a.getTenant)                       // Perfil de um tenant
	r.Get("/v1/profiles/{id}/tenants", a.listProfileTenants)     // Tenants de um perfil
	r.Get("/v1/fixtures/{urn}/boosts", a.listFixtureBoosts)      // Boosts ativos de um fixture
	r.Get("/v1/sports/{urn}/markets/{id}/primary", a.getPrimary) // Mercado primário?
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type tenantDTO struct {
	ID        string `json:"id"`
	ProfileID int64  `json:"profileId"`
}

type boostDTO struct {
	ProfileID       int64   `json:"profileId"`
	FixtureURN      string  `json:"fixtureUrn"`
	MarketID        int     `json:"marketId"`
	MarketSpecifier string  `json:"marketSpecifier,omitempty"`
	Strategy        string  `json:"strategy"`
	Percent         float64 `json:"percent"`
}

// listTenants retorna todos os tenants do índice corrente
func (a *API) listTenants(w http.ResponseWriter, r *http.Request) {
	snap := a.Tenants.Current()
	ids := snap.TenantIDs()
	out := make([]tenantDTO, 0, len(ids))
	for _, id := range ids {
		profileID, _ := snap.Get(id)
		out = append(out, tenantDTO{ID: id, ProfileID: profileID})
	}
	writeJSON(w, http.StatusOK, out)
}

// getTenant retorna um tenant do índice corrente, 404 se desconhecido
func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	profileID, ok := a.Tenants.Current().Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, tenantDTO{ID: id, ProfileID: profileID})
}

// listProfileTenants retorna os tenants de um perfil de boost
func (a *API) listProfileTenants(w http.ResponseWriter, r *http.Request) {
	profileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid profile id"})
		return
	}
	ids := a.Tenants.Current().TenantsOf(profileID)
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"profileId": profileID, "tenants": ids})
}

// listFixtureBoosts retorna as configs de boost de todos os perfis pra um fixture
func (a *API) listFixtureBoosts(w http.ResponseWriter, r *http.Request) {
	urn := chi.URLParam(r, "urn")
	cfgs, err := a.Boosts.ForFixtures(r.Context(), []string{urn})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	out := make([]boostDTO, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, boostDTO{
			ProfileID:       c.ProfileID,
			FixtureURN:      c.FixtureURN,
			MarketID:        c.MarketID,
			MarketSpecifier: c.MarketSpecifier,
			Strategy:        c.Strategy,
			Percent:         c.Percent,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// getPrimary consulta o cache de mapping pra um mercado de um esporte
func (a *API) getPrimary(w http.ResponseWriter, r *http.Request) {
	urn := chi.URLParam(r, "urn")
	marketID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid market id"})
		return
	}
	primary, err := a.Mapping.IsPrimaryMarket(r.Context(), marketID, urn)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sportUrn": urn, "marketId": marketID, "primary": primary})
}
