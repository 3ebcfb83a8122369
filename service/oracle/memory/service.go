// Package memory provides an in-memory rate table oracle.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/shopspring/decimal"
)

type Service struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// Option customises the oracle.
type Option func(*Service)

// WithRate seeds the price of one unit of asset expressed in referenceAsset.
func WithRate(asset, referenceAsset string, rate decimal.Decimal) Option {
	return func(s *Service) { s.rates[pairKey(asset, referenceAsset)] = rate }
}

// New creates a rate table oracle.
func New(options ...Option) *Service {
	ret := &Service{rates: make(map[string]decimal.Decimal)}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// SetRate updates a pair rate; tests use it to model price movement between
// creation and execution.
func (s *Service) SetRate(asset, referenceAsset string, rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[pairKey(asset, referenceAsset)] = rate
}

// Value converts amount of asset into referenceAsset at the current rate.
func (s *Service) Value(ctx context.Context, asset, referenceAsset string, amount decimal.Decimal) (decimal.Decimal, error) {
	if strings.EqualFold(asset, referenceAsset) {
		return amount, nil
	}
	s.mu.RLock()
	rate, ok := s.rates[pairKey(asset, referenceAsset)]
	s.mu.RUnlock()
	if !ok {
		return decimal.Zero, types.NewErrorf(types.KindPayload, "unsupported pair %v/%v", asset, referenceAsset)
	}
	return amount.Mul(rate), nil
}

// IsSupportedPair reports whether a rate exists for the pair.
func (s *Service) IsSupportedPair(ctx context.Context, asset, referenceAsset string) (bool, error) {
	if strings.EqualFold(asset, referenceAsset) {
		return true, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rates[pairKey(asset, referenceAsset)]
	return ok, nil
}

func pairKey(asset, referenceAsset string) string {
	return strings.ToLower(asset) + "/" + strings.ToLower(referenceAsset)
}
