// Package claim implements the self-service claim policy kind: the caller is
// both requester and sole beneficiary of a fixed payout, once per identity.
// Policies may additionally demand a signed voucher, verified as a JWT
// against an HMAC or RSA key resource.
package claim

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
	"github.com/viant/scy"
	"github.com/viant/scy/auth/jwt/verifier"
	"github.com/viant/x"
)

// ErrAlreadyClaimed marks a repeated claim by the same identity.
var ErrAlreadyClaimed = types.NewError(types.KindClaim, "identity already claimed")

// Params are the kind-specific policy parameters.
type Params struct {
	Asset string `json:"asset" yaml:"asset"`

	// Amount is the fixed payout per claim.
	Amount decimal.Decimal `json:"amount" yaml:"amount"`

	// Voucher verification keys; when either is set every claim must carry a
	// voucher whose subject matches the caller.
	VoucherRSAKeyURL  string `json:"voucherRsaKeyURL,omitempty" yaml:"voucherRsaKeyURL,omitempty"`
	VoucherHMACKeyURL string `json:"voucherHmacKeyURL,omitempty" yaml:"voucherHmacKeyURL,omitempty"`
	VoucherKeySecret  string `json:"voucherKeySecret,omitempty" yaml:"voucherKeySecret,omitempty"`
}

// Payload is one claim request. Amount is optional; when present it must
// equal the policy's fixed amount.
type Payload struct {
	Amount  decimal.Decimal `json:"amount,omitempty"`
	Voucher string          `json:"voucher,omitempty"`
}

type prototype struct{}

// New creates the claim prototype.
func New() variant.Prototype {
	return &prototype{}
}

func (p *prototype) Kind() policy.Kind {
	return policy.KindClaim
}

func (p *prototype) PayloadType() *x.Type {
	return x.NewType(reflect.TypeOf(Payload{}), x.WithName("claim.Payload"))
}

func (p *prototype) Bind(ctx context.Context, config *policy.Config) (variant.Variant, error) {
	params, err := variant.DecodeParams[Params](config.Params)
	if err != nil {
		return nil, err
	}
	if params.Asset == "" {
		return nil, types.NewError(types.KindConfiguration, "claim policy requires asset")
	}
	if !params.Amount.IsPositive() {
		return nil, types.NewError(types.KindConfiguration, "claim policy requires positive amount")
	}
	ret := &service{config: config, params: params}
	if params.VoucherRSAKeyURL != "" || params.VoucherHMACKeyURL != "" {
		verifierConfig := &verifier.Config{}
		if params.VoucherRSAKeyURL != "" {
			verifierConfig.RSA = []*scy.Resource{{URL: params.VoucherRSAKeyURL, Key: params.VoucherKeySecret}}
		}
		if params.VoucherHMACKeyURL != "" {
			verifierConfig.HMAC = &scy.Resource{URL: params.VoucherHMACKeyURL, Key: params.VoucherKeySecret}
		}
		ret.verifier = verifier.New(verifierConfig)
		if err = ret.verifier.Init(ctx); err != nil {
			return nil, types.WrapError(types.KindConfiguration, "voucher verifier init failed", err)
		}
	}
	return ret, nil
}

type service struct {
	config   *policy.Config
	params   *Params
	verifier *verifier.Service
}

func (s *service) Decode(raw json.RawMessage) (interface{}, error) {
	return variant.DecodeAs[Payload](raw)
}

func (s *service) Validate(ctx context.Context, scope *variant.Scope, payload interface{}) error {
	request, err := payloadOf(payload)
	if err != nil {
		return err
	}
	if scope.HasClaimed != nil && scope.HasClaimed(scope.Caller) {
		return ErrAlreadyClaimed
	}
	if !request.Amount.IsZero() && !request.Amount.Equal(s.params.Amount) {
		return types.NewErrorf(types.KindPayload, "claim amount %v differs from fixed amount %v", request.Amount, s.params.Amount)
	}
	if s.verifier != nil {
		if request.Voucher == "" {
			return types.NewError(types.KindClaim, "voucher required")
		}
		claims, err := s.verifier.VerifyClaims(ctx, request.Voucher)
		if err != nil {
			return types.WrapError(types.KindClaim, "voucher verification failed", err)
		}
		if !strings.EqualFold(claims.Subject, scope.Caller) {
			return types.NewErrorf(types.KindClaim, "voucher subject %v does not match caller", claims.Subject)
		}
	}
	if _, err = oracle.Normalize(ctx, scope.Oracle, s.params.Asset, s.config.ReferenceAsset, s.params.Amount); err != nil {
		return err
	}
	return nil
}

func (s *service) ChargeValue(ctx context.Context, scope *variant.Scope, payload interface{}) (decimal.Decimal, error) {
	return oracle.Normalize(ctx, scope.Oracle, s.params.Asset, s.config.ReferenceAsset, s.params.Amount)
}

func (s *service) ExecutionCalls(ctx context.Context, scope *variant.Scope, payload interface{}) ([]*custodian.Call, error) {
	call, err := custodian.EncodeTransfer(s.params.Asset, scope.Caller, s.params.Amount)
	if err != nil {
		return nil, err
	}
	return []*custodian.Call{call}, nil
}

// ClaimedIdentities consumes the caller's claim after a successful execution.
func (s *service) ClaimedIdentities(ctx context.Context, scope *variant.Scope, payload interface{}) ([]string, error) {
	return []string{scope.Caller}, nil
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
