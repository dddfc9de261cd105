// Package repository implementa o acesso Postgres do roteador: tenants,
// perfis e catálogo de boosts.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/odds-feed-router/internal/odds-router/tenant"
)

// TenantRepo lê a tabela tenants pra alimentar o índice em memória.
// DB: conexão com o banco de dados
type TenantRepo struct {
	DB *sql.DB
}

// NewTenantRepo retorna uma instância de repositório de tenants
func NewTenantRepo(db *sql.DB) *TenantRepo {
	return &TenantRepo{DB: db}
}

// FindAllTenants carrega todos os tenants cadastrados, com o perfil de
// boost de cada um (nulo quando o tenant não participa de boost).
func (r *TenantRepo) FindAllTenants(ctx context.Context) ([]tenant.Tenant, error) {
	const q = `
		SELECT id, profile_id
		FROM tenants
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	var out []tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(&t.ID, &t.ProfileID); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return out, nil
}
