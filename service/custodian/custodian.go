package custodian

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Call is one forwarded execution instruction. Target addresses the receiving
// contract or account, CallData is the encoded operation and Value the native
// amount attached to the call.
type Call struct {
	Target   string          `json:"target"`
	CallData json.RawMessage `json:"callData,omitempty"`
	Value    decimal.Decimal `json:"value"`
}

// Custodian is the external account service holding treasury assets. It
// performs transfers on instruction and reports balances; it never evaluates
// policy.
type Custodian interface {
	// ExecuteInstructions settles all calls of one transaction atomically:
	// either every call applies or none does. The engine forwards the whole
	// batch in one unit so a rejected call cannot leave partial settlement
	// behind.
	ExecuteInstructions(ctx context.Context, calls []*Call) ([]json.RawMessage, error)

	// Balance returns the custodial balance of the given asset.
	Balance(ctx context.Context, asset string) (decimal.Decimal, error)
}

// Transfer is the wire shape of a transfer operation encoded into Call data.
type Transfer struct {
	Op     string          `json:"op"`
	Asset  string          `json:"asset"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// OpTransfer identifies a transfer operation in encoded call data.
const OpTransfer = "transfer"

// EncodeTransfer builds a transfer call against the custodian.
func EncodeTransfer(asset, to string, amount decimal.Decimal) (*Call, error) {
	data, err := json.Marshal(&Transfer{Op: OpTransfer, Asset: asset, To: to, Amount: amount})
	if err != nil {
		return nil, err
	}
	return &Call{Target: to, CallData: data}, nil
}
