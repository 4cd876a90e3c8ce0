package observability

// Metric name prefixes
const (
	MetricPrefix = "guildgreeter"
)

// Metric names
const (
	// Economy metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"
	AccountsCreatedTotal     = MetricPrefix + ".accounts.created_total"

	// Casino metrics
	WagersResolvedTotal = MetricPrefix + ".wagers.resolved_total"
	WagerVolumeTotal    = MetricPrefix + ".wagers.volume_total"
	SessionsActive      = MetricPrefix + ".sessions.active"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelCategory  = "category"
	LabelEventType = "event_type"
	LabelGame      = "game"
	LabelOutcome   = "outcome"
)

// Wager outcomes as seen from the player
const (
	OutcomeWon      = "won"
	OutcomeLost     = "lost"
	OutcomeRefunded = "refunded"
)
