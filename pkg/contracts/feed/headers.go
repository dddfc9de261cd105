package feed

// Headers de roteamento que acompanham a mensagem no broker. O ingest grava
// os três primeiros a partir do envelope; o router decide a rota por eles.
const (
	HeaderSportURN  = "x-sport-urn"
	HeaderTenantID  = "x-tenant-id"
	HeaderNodeID    = "x-node-id"
	HeaderProfileID = "x-profile-id"

	// Gravados pelo router na saída por tenant.
	HeaderSportID = "x-sport-id"
	HeaderEventID = "x-event-id"
	HeaderProduct = "x-product"
)

// Envelope é o frame JSON que o simulador envia pro ingest via WebSocket:
// o payload XML mais os metadados de roteamento.
type Envelope struct {
	SportURN  string `json:"sport_urn"`
	TenantID  string `json:"tenant_id,omitempty"`
	NodeID    string `json:"node_id,omitempty"`
	ProfileID *int64 `json:"profile_id,omitempty"`
	Payload   string `json:"payload"` // odds_change em XML
}
