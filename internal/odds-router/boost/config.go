// Package boost aplica as campanhas de boost de odds configuradas por
// perfil de tenant sobre mensagens odds_change do feed.
package boost

import (
	"context"
	"strconv"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// Config é uma linha de boosted_markets: o boost de um mercado específico
// de um fixture para um perfil.
type Config struct {
	ProfileID       int64
	FixtureURN      string
	MarketID        int
	MarketSpecifier string
	Strategy        string // nome registrado no Registry
	Percent         float64
}

// Key devolve a chave de mercado no mesmo formato de feed.Market.Key.
func (c Config) Key() string {
	return strconv.Itoa(c.MarketID) + "|" + feed.NormalizeSpecifiers(c.MarketSpecifier)
}

// Catalog expõe as configurações de boost ativas. Slice vazio sem erro
// significa "sem boost"; erro significa catálogo indisponível.
type Catalog interface {
	ForProfileAndFixture(ctx context.Context, profileID int64, fixtureURN string) ([]Config, error)
	ForFixtures(ctx context.Context, fixtureURNs []string) ([]Config, error)
}

// MapByKey indexa as configs pela chave de mercado. Em chave duplicada
// vale a primeira; as queries do catálogo ordenam por id pra isso ser
// determinístico.
func MapByKey(cfgs []Config) map[string]Config {
	out := make(map[string]Config, len(cfgs))
	for _, c := range cfgs {
		k := c.Key()
		if _, ok := out[k]; ok {
			continue
		}
		out[k] = c
	}
	return out
}

// GroupByProfile agrupa por perfil já indexando pela chave de mercado.
func GroupByProfile(cfgs []Config) map[int64]map[string]Config {
	out := make(map[int64]map[string]Config)
	for _, c := range cfgs {
		byKey, ok := out[c.ProfileID]
		if !ok {
			byKey = make(map[string]Config)
			out[c.ProfileID] = byKey
		}
		k := c.Key()
		if _, ok := byKey[k]; ok {
			continue
		}
		byKey[k] = c
	}
	return out
}
