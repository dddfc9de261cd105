package boost

import (
	"fmt"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// Applicator aplica um conjunto de boosts sobre uma mensagem do feed.
// A mensagem original nunca é alterada; a saída é sempre um clone.
type Applicator struct {
	registry *Registry
}

func NewApplicator(registry *Registry) *Applicator {
	return &Applicator{registry: registry}
}

// Apply clona a mensagem e reescreve as odds dos mercados que têm boost
// configurado, casando pela chave de mercado. Estratégia desconhecida
// falha a aplicação inteira.
func (a *Applicator) Apply(msg *feed.OddsChange, boosts map[string]Config) (*feed.OddsChange, error) {
	clone := msg.Clone()
	if clone.Odds == nil || len(boosts) == 0 {
		return clone, nil
	}

	for i, mk := range clone.Odds.Markets {
		cfg, ok := boosts[mk.Key()]
		if !ok {
			continue
		}

		strategy, err := a.registry.Get(cfg.Strategy)
		if err != nil {
			return nil, fmt.Errorf("apply boost to market %s: %w", mk.Key(), err)
		}

		built := Build(mk)
		strategy.Apply(&built, cfg.Percent)
		clone.Odds.Markets[i] = Fold(mk, built)
	}

	return clone, nil
}
