package topics

const (
	// Feed de entrada (ingest -> router)
	OddsChanges = "odds_changes"

	// Prefixo dos tópicos de saída por tenant, ex: "odds.tenant.betshop-br"
	TenantPrefix = "odds.tenant."

	// Stream de arquivamento do feed no Redis
	FeedLog = "feed_log"
)
