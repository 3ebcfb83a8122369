// Package event fans policy lifecycle notifications out to typed
// subscribers. Every typed publish also lands on a catch-all queue so one
// listener can audit the whole treasury.
package event

import "time"

// Context locates an event within the policy ledger.
type Context struct {
	PolicyID      string `json:"policyId"`
	TransactionID uint64 `json:"transactionId,omitempty"`
	EventType     string `json:"eventType"`
	Service       string `json:"service"`
	Method        string `json:"method"`
	TimeTakenMs   int    `json:"timeTakenMs"`
}

// Event wraps a typed payload with its ledger context.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
