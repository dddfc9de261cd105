package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/radieske/odds-feed-router/internal/odds-router/boost"
	"github.com/radieske/odds-feed-router/internal/odds-router/tenant"
)

type fakeTenantView struct{ snap tenant.Snapshot }

func (f *fakeTenantView) Current() tenant.Snapshot { return f.snap }

type fakeCatalog struct {
	cfgs []boost.Config
	err  error
	got  []string
}

func (f *fakeCatalog) ForProfileAndFixture(ctx context.Context, profileID int64, fixtureURN string) ([]boost.Config, error) {
	return f.cfgs, f.err
}

func (f *fakeCatalog) ForFixtures(ctx context.Context, fixtureURNs []string) ([]boost.Config, error) {
	f.got = fixtureURNs
	return f.cfgs, f.err
}

type fakePrimary struct {
	primary bool
	err     error
}

func (f *fakePrimary) IsPrimaryMarket(ctx context.Context, marketID int, sportURN string) (bool, error) {
	return f.primary, f.err
}

func newAPI() (*API, *fakeCatalog, *fakePrimary) {
	catalog := &fakeCatalog{}
	primary := &fakePrimary{}
	api := &API{
		Tenants: &fakeTenantView{snap: tenant.NewSnapshot(map[string]int64{"tenant-b": 2, "tenant-a": 1, "tenant-c": 1})},
		Boosts:  catalog,
		Mapping: primary,
	}
	return api, catalog, primary
}

func doGET(t *testing.T, api *API, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestListTenants(t *testing.T) {
	api, _, _ := newAPI()

	rec := doGET(t, api, "/v1/tenants")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []tenantDTO
	decodeBody(t, rec, &got)
	want := []tenantDTO{{"tenant-a", 1}, {"tenant-b", 2}, {"tenant-c", 1}}
	if len(got) != len(want) {
		t.Fatalf("got %d tenants, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tenant[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGetTenant(t *testing.T) {
	api, _, _ := newAPI()

	rec := doGET(t, api, "/v1/tenants/tenant-b")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got tenantDTO
	decodeBody(t, rec, &got)
	if got.ID != "tenant-b" || got.ProfileID != 2 {
		t.Errorf("got %+v, want tenant-b/2", got)
	}

	if rec := doGET(t, api, "/v1/tenants/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown tenant status = %d, want 404", rec.Code)
	}
}

func TestListProfileTenants(t *testing.T) {
	api, _, _ := newAPI()

	rec := doGET(t, api, "/v1/profiles/1/tenants")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		ProfileID int64    `json:"profileId"`
		Tenants   []string `json:"tenants"`
	}
	decodeBody(t, rec, &got)
	if got.ProfileID != 1 || len(got.Tenants) != 2 || got.Tenants[0] != "tenant-a" || got.Tenants[1] != "tenant-c" {
		t.Errorf("got %+v, want profile 1 with tenant-a, tenant-c", got)
	}

	rec = doGET(t, api, "/v1/profiles/99/tenants")
	decodeBody(t, rec, &got)
	if got.Tenants == nil || len(got.Tenants) != 0 {
		t.Errorf("unknown profile tenants = %v, want []", got.Tenants)
	}

	if rec := doGET(t, api, "/v1/profiles/abc/tenants"); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid profile id status = %d, want 400", rec.Code)
	}
}

func TestListFixtureBoosts(t *testing.T) {
	api, catalog, _ := newAPI()
	catalog.cfgs = []boost.Config{
		{ProfileID: 1, FixtureURN: "sr:match:100", MarketID: 10, MarketSpecifier: "total=2.5", Strategy: "ADDITIVE_PERCENT", Percent: 12.5},
	}

	rec := doGET(t, api, "/v1/fixtures/sr:match:100/boosts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(catalog.got) != 1 || catalog.got[0] != "sr:match:100" {
		t.Errorf("catalog queried with %v, want [sr:match:100]", catalog.got)
	}
	var got []boostDTO
	decodeBody(t, rec, &got)
	if len(got) != 1 || got[0].Strategy != "ADDITIVE_PERCENT" || got[0].Percent != 12.5 {
		t.Errorf("got %+v", got)
	}

	catalog.err = errors.New("db down")
	if rec := doGET(t, api, "/v1/fixtures/sr:match:100/boosts"); rec.Code != http.StatusInternalServerError {
		t.Errorf("catalog error status = %d, want 500", rec.Code)
	}
}

func TestGetPrimary(t *testing.T) {
	api, _, primary := newAPI()
	primary.primary = true

	rec := doGET(t, api, "/v1/sports/sr:sport:1/markets/10/primary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		SportURN string `json:"sportUrn"`
		MarketID int    `json:"marketId"`
		Primary  bool   `json:"primary"`
	}
	decodeBody(t, rec, &got)
	if got.SportURN != "sr:sport:1" || got.MarketID != 10 || !got.Primary {
		t.Errorf("got %+v", got)
	}

	if rec := doGET(t, api, "/v1/sports/sr:sport:1/markets/abc/primary"); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid market id status = %d, want 400", rec.Code)
	}

	primary.err = errors.New("redis down")
	if rec := doGET(t, api, "/v1/sports/sr:sport:1/markets/10/primary"); rec.Code != http.StatusInternalServerError {
		t.Errorf("mapping error status = %d, want 500", rec.Code)
	}
}
