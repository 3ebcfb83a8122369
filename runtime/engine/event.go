package engine

// Event is the envelope fanned out on every lifecycle transition. Data holds
// a *policy.Config for policy topics and a *transaction.Transaction for
// transaction topics.
type Event struct {
	Topic    string            `json:"topic"`
	PolicyID string            `json:"policyId"`
	Data     interface{}       `json:"data"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// Standard event topics.
const (
	TopicPolicyCreated = "policy.created"
	TopicPolicyRemoved = "policy.removed"

	TopicTransactionCreated  = "transaction.created"
	TopicTransactionApproved = "transaction.approved"
	TopicTransactionExecuted = "transaction.executed"
	TopicTransactionRevoked  = "transaction.revoked"
)
