// Package feed define o contrato canônico das mensagens odds_change que
// circulam entre os serviços do roteador (simulador, ingest, router e os
// tópicos por tenant).
package feed

import (
	"encoding/xml"
	"sort"
	"strconv"
	"strings"
)

// Product identifica o produtor da mensagem dentro do feed.
type Product string

const (
	ProductPrematch Product = "PREMATCH"
	ProductLive     Product = "LIVE"
	ProductVirtuals Product = "VIRTUALS"
)

// Status de mercado no feed.
const (
	MarketStatusActive    = 1
	MarketStatusInactive  = 0
	MarketStatusSuspended = -1
)

// OddsChange é a mensagem canônica do feed: o estado corrente das odds de
// um fixture, serializada em XML no wire.
type OddsChange struct {
	XMLName   xml.Name `xml:"odds_change"`
	EventID   string   `xml:"event_id,attr"` // URN do fixture, ex: "sr:match:12345"
	Product   Product  `xml:"product,attr"`
	Timestamp int64    `xml:"timestamp,attr"` // epoch millis do fornecedor
	Odds      *Odds    `xml:"odds"`
}

type Odds struct {
	Markets []Market `xml:"market"`
}

type Market struct {
	ID         int       `xml:"id,attr"`
	Specifiers string    `xml:"specifiers,attr,omitempty"` // pares "k=v" separados por "|"
	Status     int       `xml:"status,attr"`
	Favourite  bool      `xml:"favourite,attr,omitempty"`
	Outcomes   []Outcome `xml:"outcome"`
}

type Outcome struct {
	ID     string  `xml:"id,attr"`
	Odds   float64 `xml:"odds,attr"` // odd decimal, ex: 1.85
	Active bool    `xml:"active,attr"`
}

// Markets retorna os mercados da mensagem tolerando o bloco <odds> ausente.
func (m *OddsChange) Markets() []Market {
	if m == nil || m.Odds == nil {
		return nil
	}
	return m.Odds.Markets
}

// Clone devolve uma cópia profunda da mensagem. O fan-out usa a cópia pra
// aplicar boost por perfil sem tocar na mensagem original.
func (m *OddsChange) Clone() *OddsChange {
	if m == nil {
		return nil
	}
	out := *m
	if m.Odds == nil {
		return &out
	}
	markets := make([]Market, len(m.Odds.Markets))
	for i, mk := range m.Odds.Markets {
		outcomes := make([]Outcome, len(mk.Outcomes))
		copy(outcomes, mk.Outcomes)
		mk.Outcomes = outcomes
		markets[i] = mk
	}
	out.Odds = &Odds{Markets: markets}
	return &out
}

// Key identifica o mercado dentro de um fixture: "id|specifiers", com os
// specifiers normalizados. As configurações de boost usam a mesma chave.
func (mk Market) Key() string {
	return strconv.Itoa(mk.ID) + "|" + NormalizeSpecifiers(mk.Specifiers)
}

// NormalizeSpecifiers ordena os pares "k=v" pra chave ficar determinística
// independente da ordem em que o fornecedor serializou os specifiers.
func NormalizeSpecifiers(s string) string {
	if !strings.Contains(s, "|") {
		return s
	}
	parts := strings.Split(s, "|")
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
