// Package transfer implements the direct-transfer policy kind: outbound
// transfers of allow-listed assets to allow-listed recipients, charged at
// their price-normalized value.
package transfer

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

// Params are the kind-specific policy parameters.
type Params struct {
	Assets     policy.AllowList `json:"assets,omitempty" yaml:"assets,omitempty"`
	Recipients policy.AllowList `json:"recipients,omitempty" yaml:"recipients,omitempty"`
}

// Payload is one transfer instruction.
type Payload struct {
	Asset  string          `json:"asset"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type prototype struct{}

// New creates the transfer prototype.
func New() variant.Prototype {
	return &prototype{}
}

func (p *prototype) Kind() policy.Kind {
	return policy.KindTransfer
}

func (p *prototype) PayloadType() *x.Type {
	return x.NewType(reflect.TypeOf(Payload{}), x.WithName("transfer.Payload"))
}

func (p *prototype) Bind(ctx context.Context, config *policy.Config) (variant.Variant, error) {
	params, err := variant.DecodeParams[Params](config.Params)
	if err != nil {
		return nil, err
	}
	if !params.Assets.Any && len(params.Assets.Items) == 0 {
		return nil, types.NewError(types.KindConfiguration, "transfer policy allows no asset")
	}
	if !params.Recipients.Any && len(params.Recipients.Items) == 0 {
		return nil, types.NewError(types.KindConfiguration, "transfer policy allows no recipient")
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
	transfer, err := payloadOf(payload)
	if err != nil {
		return err
	}
	if !transfer.Amount.IsPositive() {
		return types.NewErrorf(types.KindPayload, "transfer amount %v must be positive", transfer.Amount)
	}
	if !s.params.Assets.Allows(transfer.Asset) {
		return types.NewErrorf(types.KindPayload, "asset %v not allowed by policy", transfer.Asset)
	}
	if !s.params.Recipients.Allows(transfer.To) {
		return types.NewErrorf(types.KindPayload, "recipient %v not allowed by policy", transfer.To)
	}
	// Fail unsupported pricing pairs during validation rather than at charge
	// time so the whole batch aborts before any budget is touched.
	if _, err = oracle.Normalize(ctx, scope.Oracle, transfer.Asset, s.config.ReferenceAsset, transfer.Amount); err != nil {
		return err
	}
	return nil
}

func (s *service) ChargeValue(ctx context.Context, scope *variant.Scope, payload interface{}) (decimal.Decimal, error) {
	transfer, err := payloadOf(payload)
	if err != nil {
		return decimal.Zero, err
	}
	return oracle.Normalize(ctx, scope.Oracle, transfer.Asset, s.config.ReferenceAsset, transfer.Amount)
}

func (s *service) ExecutionCalls(ctx context.Context, scope *variant.Scope, payload interface{}) ([]*custodian.Call, error) {
	transfer, err := payloadOf(payload)
	if err != nil {
		return nil, err
	}
	call, err := custodian.EncodeTransfer(transfer.Asset, transfer.To, transfer.Amount)
	if err != nil {
		return nil, err
	}
	return []*custodian.Call{call}, nil
}

func payloadOf(payload interface{}) (*Payload, error) {
	transfer, ok := payload.(*Payload)
	if !ok {
		return nil, types.NewErrorf(types.KindPayload, "unexpected payload type %T", payload)
	}
	return transfer, nil
}

var _ variant.Variant = (*service)(nil)
