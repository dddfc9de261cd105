// Package urn faz o parsing dos identificadores URN usados pelo feed
// (ex: "sr:match:12345", "sr:sport:1").
package urn

import (
	"fmt"
	"strconv"
	"strings"
)

// URN representa um identificador do feed já decomposto.
type URN struct {
	Prefix string
	Type   string
	ID     int64
}

// Parse valida e decompõe uma URN no formato "prefix:type:id".
func Parse(raw string) (URN, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return URN{}, fmt.Errorf("malformed urn %q: expected prefix:type:id", raw)
	}
	if parts[0] == "" || parts[1] == "" {
		return URN{}, fmt.Errorf("malformed urn %q: empty segment", raw)
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return URN{}, fmt.Errorf("malformed urn %q: %w", raw, err)
	}
	return URN{Prefix: parts[0], Type: parts[1], ID: id}, nil
}

func (u URN) String() string {
	return u.Prefix + ":" + u.Type + ":" + strconv.FormatInt(u.ID, 10)
}
