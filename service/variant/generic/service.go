// Package generic implements the pass-through policy kind: instructions carry
// an arbitrary target call and a declared value, forwarded to the custodian
// verbatim. Only the shared lifecycle constraints apply; the declared value is
// what the ceiling is charged.
package generic

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/adam-vault/adam-contract-core-sub000/service/oracle"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant"
	"github.com/shopspring/decimal"
	"github.com/viant/x"
)

// Params optionally restrict callable targets; empty items with Any unset
// means any target.
type Params struct {
	Targets policy.AllowList `json:"targets,omitempty" yaml:"targets,omitempty"`

	// ValueAsset prices the declared value against the reference asset;
	// empty means the value is already expressed in the reference asset.
	ValueAsset string `json:"valueAsset,omitempty" yaml:"valueAsset,omitempty"`
}

// Payload is one forwarded call.
type Payload struct {
	Target   string          `json:"target"`
	CallData json.RawMessage `json:"callData,omitempty"`
	Value    decimal.Decimal `json:"value"`
}

type prototype struct{}

// New creates the generic prototype.
func New() variant.Prototype {
	return &prototype{}
}

func (p *prototype) Kind() policy.Kind {
	return policy.KindGeneric
}

func (p *prototype) PayloadType() *x.Type {
	return x.NewType(reflect.TypeOf(Payload{}), x.WithName("generic.Payload"))
}

func (p *prototype) Bind(ctx context.Context, config *policy.Config) (variant.Variant, error) {
	params, err := variant.DecodeParams[Params](config.Params)
	if err != nil {
		return nil, err
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
	request, err := payloadOf(payload)
	if err != nil {
		return err
	}
	if request.Target == "" {
		return types.NewError(types.KindPayload, "generic call requires target")
	}
	if request.Value.IsNegative() {
		return types.NewError(types.KindPayload, "generic call value must not be negative")
	}
	if len(s.params.Targets.Items) > 0 && !s.params.Targets.Allows(request.Target) {
		return types.NewErrorf(types.KindPayload, "target %v not allowed", request.Target)
	}
	_, err = s.chargeOf(ctx, scope, request)
	return err
}

func (s *service) ChargeValue(ctx context.Context, scope *variant.Scope, payload interface{}) (decimal.Decimal, error) {
	request, err := payloadOf(payload)
	if err != nil {
		return decimal.Zero, err
	}
	return s.chargeOf(ctx, scope, request)
}

func (s *service) ExecutionCalls(ctx context.Context, scope *variant.Scope, payload interface{}) ([]*custodian.Call, error) {
	request, err := payloadOf(payload)
	if err != nil {
		return nil, err
	}
	return []*custodian.Call{{Target: request.Target, CallData: request.CallData, Value: request.Value}}, nil
}

func (s *service) chargeOf(ctx context.Context, scope *variant.Scope, request *Payload) (decimal.Decimal, error) {
	if s.params.ValueAsset == "" {
		return request.Value, nil
	}
	return oracle.Normalize(ctx, scope.Oracle, s.params.ValueAsset, s.config.ReferenceAsset, request.Value)
}

func payloadOf(payload interface{}) (*Payload, error) {
	request, ok := payload.(*Payload)
	if !ok {
		return nil, types.NewErrorf(types.KindPayload, "unexpected payload type %T", payload)
	}
	return request, nil
}

var _ variant.Variant = (*service)(nil)
