// Package mapping consulta o cache de market mapping: quais mercados são
// primários por esporte. As chaves são populadas fora deste serviço pelo
// tooling de operação.
package mapping

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	Rdb *redis.Client
}

func NewCache(r *redis.Client) *Cache { return &Cache{Rdb: r} }

// Espera um set por esporte "markets:primary:{sportUrn}" com os ids dos
// mercados primários como membros, ex: "markets:primary:sr:sport:1".
func key(sportURN string) string {
	return "markets:primary:" + sportURN
}

// IsPrimaryMarket consulta um mercado só.
func (c *Cache) IsPrimaryMarket(ctx context.Context, marketID int, sportURN string) (bool, error) {
	ok, err := c.Rdb.SIsMember(ctx, key(sportURN), strconv.Itoa(marketID)).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// AnyPrimaryMarket consulta todos os mercados de uma mensagem numa ida só.
func (c *Cache) AnyPrimaryMarket(ctx context.Context, marketIDs []int, sportURN string) (bool, error) {
	if len(marketIDs) == 0 {
		return false, nil
	}

	members := make([]interface{}, len(marketIDs))
	for i, id := range marketIDs {
		members[i] = strconv.Itoa(id)
	}

	results, err := c.Rdb.SMIsMember(ctx, key(sportURN), members...).Result()
	if err != nil {
		return false, err
	}
	for _, hit := range results {
		if hit {
			return true, nil
		}
	}
	return false, nil
}
