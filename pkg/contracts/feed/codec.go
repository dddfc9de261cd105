package feed

import (
	"encoding/xml"
	"fmt"
)

// EncodeXML serializa a mensagem na forma canônica do wire.
func EncodeXML(m *OddsChange) ([]byte, error) {
	return xml.Marshal(m)
}

// DecodeXML desserializa e valida uma mensagem odds_change.
func DecodeXML(data []byte) (*OddsChange, error) {
	var m OddsChange
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode odds_change: %w", err)
	}
	if m.EventID == "" {
		return nil, fmt.Errorf("decode odds_change: missing event_id")
	}
	return &m, nil
}
