package boost

import (
	"fmt"
	"math"
	"sync"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// Estratégias registradas por padrão.
const (
	StrategyAdditivePercent       = "ADDITIVE_PERCENT"
	StrategyMultiplicativePercent = "MULTIPLICATIVE_PERCENT"
)

// BuiltMarket é a visão mutável que as estratégias recebem: só o que um
// boost pode alterar, sem o resto do estado do mercado.
type BuiltMarket struct {
	ID         int
	Specifiers string
	Outcomes   []BuiltOutcome
}

type BuiltOutcome struct {
	ID     string
	Odds   float64
	Active bool
}

// Strategy reescreve as odds de um mercado com o percentual configurado.
type Strategy interface {
	Apply(m *BuiltMarket, percent float64)
}

// Build projeta um mercado do feed na visão de estratégia.
func Build(mk feed.Market) BuiltMarket {
	outcomes := make([]BuiltOutcome, len(mk.Outcomes))
	for i, o := range mk.Outcomes {
		outcomes[i] = BuiltOutcome{ID: o.ID, Odds: o.Odds, Active: o.Active}
	}
	return BuiltMarket{ID: mk.ID, Specifiers: mk.Specifiers, Outcomes: outcomes}
}

// Fold devolve o mercado original com as odds calculadas de volta,
// preservando status, favourite e os demais campos.
func Fold(orig feed.Market, built BuiltMarket) feed.Market {
	out := orig
	outcomes := make([]feed.Outcome, len(orig.Outcomes))
	copy(outcomes, orig.Outcomes)
	for i := range outcomes {
		if i < len(built.Outcomes) {
			outcomes[i].Odds = built.Outcomes[i].Odds
		}
	}
	out.Outcomes = outcomes
	return out
}

// additivePercent soma o percentual sobre o retorno líquido (odd - 1).
type additivePercent struct{}

func (additivePercent) Apply(m *BuiltMarket, percent float64) {
	for i, o := range m.Outcomes {
		if o.Odds <= 1 {
			continue
		}
		m.Outcomes[i].Odds = clampOdds(o.Odds + (o.Odds-1)*percent/100)
	}
}

// multiplicativePercent escala a odd decimal inteira.
type multiplicativePercent struct{}

func (multiplicativePercent) Apply(m *BuiltMarket, percent float64) {
	for i, o := range m.Outcomes {
		if o.Odds <= 1 {
			continue
		}
		m.Outcomes[i].Odds = clampOdds(o.Odds * (1 + percent/100))
	}
}

// clampOdds arredonda pra 2 casas e trava o piso em 1.01.
func clampOdds(v float64) float64 {
	v = math.Round(v*100) / 100
	if v < 1.01 {
		return 1.01
	}
	return v
}

// UnknownStrategyError indica uma config apontando pra uma estratégia
// que não está registrada.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown boost strategy %q", e.Name)
}

// Registry guarda as estratégias por nome. Registro acontece no boot;
// a leitura é concorrente durante o fan-out.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry já registra as estratégias padrão.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{
		StrategyAdditivePercent:       additivePercent{},
		StrategyMultiplicativePercent: multiplicativePercent{},
	}}
}

// Register adiciona uma estratégia nova; nome duplicado é erro.
func (r *Registry) Register(name string, s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.strategies[name]; ok {
		return fmt.Errorf("boost strategy %q already registered", name)
	}
	r.strategies[name] = s
	return nil
}

func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[name]
	if !ok {
		return nil, &UnknownStrategyError{Name: name}
	}
	return s, nil
}
