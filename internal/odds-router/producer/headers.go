// Package producer implementa os adaptadores de broker do fan-out por
// tenant: Kafka (default), NATS e noop.
package producer

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

// headerPairs monta os headers de saída: roteamento primeiro, depois os
// headers do chamador em ordem estável.
func headerPairs(msg *feed.OddsChange, sportID int64, nodeID string, extra map[string]any) [][2]string {
	pairs := [][2]string{
		{feed.HeaderEventID, msg.EventID},
		{feed.HeaderProduct, string(msg.Product)},
		{feed.HeaderSportID, strconv.FormatInt(sportID, 10)},
		{feed.HeaderNodeID, nodeID},
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, fmt.Sprint(extra[k])})
	}
	return pairs
}
