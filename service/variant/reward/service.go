// Package reward implements the referral/deposit reward policy kind: each
// instruction pays two independent beneficiaries, a referrer and a referee,
// each a fixed amount. When the policy's remaining budget covers only one of
// the two payouts the affordable one is paid and the other is skipped.
package reward

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

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
	Asset          string          `json:"asset" yaml:"asset"`
	ReferrerAmount decimal.Decimal `json:"referrerAmount" yaml:"referrerAmount"`
	RefereeAmount  decimal.Decimal `json:"refereeAmount" yaml:"refereeAmount"`
}

// Payload names the two beneficiaries of one reward instruction. The payout
// decision is settled once per execution and carried on the payload so every
// phase of the lifecycle sees the same verdict.
type Payload struct {
	Referrer string `json:"referrer"`
	Referee  string `json:"referee"`

	payReferrer bool
	payReferee  bool
	total       decimal.Decimal
	decided     bool
}

type prototype struct{}

// New creates the reward prototype.
func New() variant.Prototype {
	return &prototype{}
}

func (p *prototype) Kind() policy.Kind {
	return policy.KindReward
}

func (p *prototype) PayloadType() *x.Type {
	return x.NewType(reflect.TypeOf(Payload{}), x.WithName("reward.Payload"))
}

func (p *prototype) Bind(ctx context.Context, config *policy.Config) (variant.Variant, error) {
	params, err := variant.DecodeParams[Params](config.Params)
	if err != nil {
		return nil, err
	}
	if params.Asset == "" {
		return nil, types.NewError(types.KindConfiguration, "reward policy requires asset")
	}
	if !params.ReferrerAmount.IsPositive() || !params.RefereeAmount.IsPositive() {
		return nil, types.NewError(types.KindConfiguration, "reward policy requires positive referrer and referee amounts")
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
	if request.Referrer == "" || request.Referee == "" {
		return types.NewError(types.KindPayload, "reward requires referrer and referee")
	}
	if strings.EqualFold(request.Referrer, request.Referee) {
		return types.NewError(types.KindPayload, "referrer and referee must differ")
	}
	if scope.HasClaimed != nil && scope.HasClaimed(request.Referee) {
		return types.NewErrorf(types.KindClaim, "referee %v already rewarded", request.Referee)
	}
	if err = s.decide(ctx, scope, request); err != nil {
		return err
	}
	if !request.payReferrer && !request.payReferee {
		return types.NewError(types.KindUsageExceeded, "remaining budget covers neither reward")
	}
	return nil
}

func (s *service) ChargeValue(ctx context.Context, scope *variant.Scope, payload interface{}) (decimal.Decimal, error) {
	request, err := payloadOf(payload)
	if err != nil {
		return decimal.Zero, err
	}
	if err = s.decide(ctx, scope, request); err != nil {
		return decimal.Zero, err
	}
	return request.total, nil
}

func (s *service) ExecutionCalls(ctx context.Context, scope *variant.Scope, payload interface{}) ([]*custodian.Call, error) {
	request, err := payloadOf(payload)
	if err != nil {
		return nil, err
	}
	if err = s.decide(ctx, scope, request); err != nil {
		return nil, err
	}
	var calls []*custodian.Call
	if request.payReferrer {
		call, err := custodian.EncodeTransfer(s.params.Asset, request.Referrer, s.params.ReferrerAmount)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	if request.payReferee {
		call, err := custodian.EncodeTransfer(s.params.Asset, request.Referee, s.params.RefereeAmount)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}

// ClaimedIdentities consumes the referee's reward once it was actually paid.
func (s *service) ClaimedIdentities(ctx context.Context, scope *variant.Scope, payload interface{}) ([]string, error) {
	request, err := payloadOf(payload)
	if err != nil {
		return nil, err
	}
	if err = s.decide(ctx, scope, request); err != nil {
		return nil, err
	}
	if !request.payReferee {
		return nil, nil
	}
	return []string{request.Referee}, nil
}

// decide settles which of the two payouts the remaining budget covers,
// referrer first, and records the verdict with the normalized total on the
// payload. The first computation wins; the budget moves once the payouts
// are debited, so recomputing later would contradict what was paid.
func (s *service) decide(ctx context.Context, scope *variant.Scope, request *Payload) error {
	if request.decided {
		return nil
	}
	referrerCharge, err := oracle.Normalize(ctx, scope.Oracle, s.params.Asset, s.config.ReferenceAsset, s.params.ReferrerAmount)
	if err != nil {
		return err
	}
	refereeCharge, err := oracle.Normalize(ctx, scope.Oracle, s.params.Asset, s.config.ReferenceAsset, s.params.RefereeAmount)
	if err != nil {
		return err
	}
	remaining, unlimited := referrerCharge.Add(refereeCharge), true
	if scope.RemainingBudget != nil {
		if remaining, unlimited, err = scope.RemainingBudget(ctx); err != nil {
			return err
		}
	}
	total := decimal.Zero
	if unlimited || referrerCharge.LessThanOrEqual(remaining) {
		request.payReferrer = true
		total = total.Add(referrerCharge)
	}
	if unlimited || total.Add(refereeCharge).LessThanOrEqual(remaining) {
		request.payReferee = true
		total = total.Add(refereeCharge)
	}
	request.total = total
	request.decided = true
	return nil
}

func payloadOf(payload interface{}) (*Payload, error) {
	request, ok := payload.(*Payload)
	if !ok {
		return nil, types.NewErrorf(types.KindPayload, "unexpected payload type %T", payload)
	}
	return request, nil
}

var (
	_ variant.Variant = (*service)(nil)
	_ variant.Claimer = (*service)(nil)
)
