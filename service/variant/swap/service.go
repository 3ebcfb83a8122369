// Package swap implements the swap policy kind: router call data is parsed
// into swap legs, the source side is debited against the ceiling and the
// destination side is unconstrained or allow-listed. Legs with unrecognized
// selectors carry no accounting weight.
package swap

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/adam-vault/adam-contract-core-sub000/service/oracle"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant/swap/calldata"
	"github.com/shopspring/decimal"
	"github.com/viant/x"
)

// Params are the kind-specific policy parameters.
type Params struct {
	// Routers lists the router targets instructions may address.
	Routers policy.AllowList `json:"routers,omitempty" yaml:"routers,omitempty"`
	// AssetsIn constrains the source side of every recognized leg.
	AssetsIn policy.AllowList `json:"assetsIn,omitempty" yaml:"assetsIn,omitempty"`
	// AssetsOut constrains the destination side; Any leaves it unconstrained.
	AssetsOut policy.AllowList `json:"assetsOut,omitempty" yaml:"assetsOut,omitempty"`
}

// Payload is one swap instruction: a router target and its call data.
type Payload struct {
	Router   string `json:"router"`
	CallData string `json:"callData"`
}

// RouteOp is the wire shape of a forwarded router call.
type RouteOp struct {
	Op   string `json:"op"`
	Data string `json:"data"`
}

// OpRoute identifies a router call in encoded call data.
const OpRoute = "route"

type prototype struct{}

// New creates the swap prototype.
func New() variant.Prototype {
	return &prototype{}
}

func (p *prototype) Kind() policy.Kind {
	return policy.KindSwap
}

func (p *prototype) PayloadType() *x.Type {
	return x.NewType(reflect.TypeOf(Payload{}), x.WithName("swap.Payload"))
}

func (p *prototype) Bind(ctx context.Context, config *policy.Config) (variant.Variant, error) {
	params, err := variant.DecodeParams[Params](config.Params)
	if err != nil {
		return nil, err
	}
	if !params.Routers.Any && len(params.Routers.Items) == 0 {
		return nil, types.NewError(types.KindConfiguration, "swap policy allows no router")
	}
	if !params.AssetsIn.Any && len(params.AssetsIn.Items) == 0 {
		return nil, types.NewError(types.KindConfiguration, "swap policy allows no source asset")
	}
	return &service{config: config, params: params}, nil
}

type service struct {
	config *policy.Config
	params *Params
}

func (s *service) Decode(raw json.RawMessage) (interface{}, error) {
	return variant.DecodeAs[Payload](raw)
}

func (s *service) Validate(ctx context.Context, scope *variant.Scope, payload interface{}) error {
	swap, err := payloadOf(payload)
	if err != nil {
		return err
	}
	if !s.params.Routers.Allows(swap.Router) {
		return types.NewErrorf(types.KindPayload, "router %v not allowed by policy", swap.Router)
	}
	legs, _, err := calldata.Parse([]byte(swap.CallData))
	if err != nil {
		return types.WrapError(types.KindPayload, "malformed router call data", err)
	}
	for _, leg := range legs {
		if !s.params.AssetsIn.Allows(leg.AssetIn) {
			return types.NewErrorf(types.KindPayload, "source asset %v not allowed by policy", leg.AssetIn)
		}
		if !s.params.AssetsOut.Allows(leg.AssetOut) {
			return types.NewErrorf(types.KindPayload, "destination asset %v not allowed by policy", leg.AssetOut)
		}
		if !leg.AmountIn.IsPositive() {
			return types.NewErrorf(types.KindPayload, "swap leg amountIn %v must be positive", leg.AmountIn)
		}
		if _, err = oracle.Normalize(ctx, scope.Oracle, leg.AssetIn, s.config.ReferenceAsset, leg.AmountIn); err != nil {
			return err
		}
	}
	return nil
}

// ChargeValue sums the price-normalized source amounts of every recognized
// leg; skipped legs contribute nothing.
func (s *service) ChargeValue(ctx context.Context, scope *variant.Scope, payload interface{}) (decimal.Decimal, error) {
	swap, err := payloadOf(payload)
	if err != nil {
		return decimal.Zero, err
	}
	legs, _, err := calldata.Parse([]byte(swap.CallData))
	if err != nil {
		return decimal.Zero, types.WrapError(types.KindPayload, "malformed router call data", err)
	}
	total := decimal.Zero
	for _, leg := range legs {
		value, err := oracle.Normalize(ctx, scope.Oracle, leg.AssetIn, s.config.ReferenceAsset, leg.AmountIn)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(value)
	}
	return total, nil
}

func (s *service) ExecutionCalls(ctx context.Context, scope *variant.Scope, payload interface{}) ([]*custodian.Call, error) {
	swap, err := payloadOf(payload)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(&RouteOp{Op: OpRoute, Data: swap.CallData})
	if err != nil {
		return nil, err
	}
	return []*custodian.Call{{Target: swap.Router, CallData: data}}, nil
}

func payloadOf(payload interface{}) (*Payload, error) {
	swap, ok := payload.(*Payload)
	if !ok {
		return nil, types.NewErrorf(types.KindPayload, "unexpected payload type %T", payload)
	}
	return swap, nil
}

var _ variant.Variant = (*service)(nil)
