package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/radieske/odds-feed-router/internal/odds-router/boost"
)

// BoostRepo lê a tabela boosted_markets, o catálogo de boosts por perfil.
// As queries ordenam por id: em mercado duplicado dentro de um perfil
// vale a config mais antiga, sempre a mesma.
type BoostRepo struct {
	DB *sql.DB
}

// NewBoostRepo retorna uma instância de repositório de boosts
func NewBoostRepo(db *sql.DB) *BoostRepo {
	return &BoostRepo{DB: db}
}

// ForProfileAndFixture busca as configs de boost de um perfil pra um
// fixture. Slice vazio significa perfil sem boost nesse fixture.
func (r *BoostRepo) ForProfileAndFixture(ctx context.Context, profileID int64, fixtureURN string) ([]boost.Config, error) {
	const q = `
		SELECT profile_id, fixture_urn, market_id, market_specifier, strategy, percent
		FROM boosted_markets
		WHERE profile_id = $1 AND fixture_urn = $2
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, q, profileID, fixtureURN)
	if err != nil {
		return nil, fmt.Errorf("query boosts for profile %d: %w", profileID, err)
	}
	return scanConfigs(rows)
}

// ForFixtures busca as configs de todos os perfis pros fixtures dados,
// numa query só. É o caminho do broadcast.
func (r *BoostRepo) ForFixtures(ctx context.Context, fixtureURNs []string) ([]boost.Config, error) {
	const q = `
		SELECT profile_id, fixture_urn, market_id, market_specifier, strategy, percent
		FROM boosted_markets
		WHERE fixture_urn = ANY($1)
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, q, pq.Array(fixtureURNs))
	if err != nil {
		return nil, fmt.Errorf("query boosts for fixtures: %w", err)
	}
	return scanConfigs(rows)
}

func scanConfigs(rows *sql.Rows) ([]boost.Config, error) {
	defer rows.Close()

	var out []boost.Config
	for rows.Next() {
		var c boost.Config
		if err := rows.Scan(&c.ProfileID, &c.FixtureURN, &c.MarketID, &c.MarketSpecifier, &c.Strategy, &c.Percent); err != nil {
			return nil, fmt.Errorf("scan boost config: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boost configs: %w", err)
	}
	return out, nil
}
