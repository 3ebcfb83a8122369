// Package memory provides an in-memory custodian used by tests and local
// runs. It applies transfer calls to a balance table and records every
// forwarded call in arrival order.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/shopspring/decimal"
)

type service struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	calls    []*custodian.Call
	failOn   map[string]error
}

// Option customises the in-memory custodian.
type Option func(*service)

// WithBalance seeds an asset balance.
func WithBalance(asset string, amount decimal.Decimal) Option {
	return func(s *service) { s.balances[strings.ToLower(asset)] = amount }
}

// WithFailure makes every call against target fail with err. Used to exercise
// batch abort behaviour.
func WithFailure(target string, err error) Option {
	return func(s *service) { s.failOn[strings.ToLower(target)] = err }
}

// New creates an in-memory custodian.
func New(options ...Option) *Service {
	ret := &service{
		balances: make(map[string]decimal.Decimal),
		failOn:   make(map[string]error),
	}
	for _, option := range options {
		option(ret)
	}
	return &Service{service: ret}
}

// Service is the exported in-memory custodian handle.
type Service struct {
	*service
}

// ExecuteInstructions settles a batch of calls atomically. Transfers are
// staged against a working copy of the balance table and applied only when
// every call settles; a single rejected call leaves balances and the call
// log untouched. Calls with unrecognised call data settle without moving
// balances.
func (s *Service) ExecuteInstructions(ctx context.Context, calls []*custodian.Call) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]decimal.Decimal, len(s.balances))
	for asset, balance := range s.balances {
		staged[asset] = balance
	}
	results := make([]json.RawMessage, 0, len(calls))
	for _, call := range calls {
		if call == nil {
			return nil, fmt.Errorf("nil call")
		}
		if err, ok := s.failOn[strings.ToLower(call.Target)]; ok {
			return nil, err
		}
		var transfer custodian.Transfer
		if len(call.CallData) > 0 {
			if err := json.Unmarshal(call.CallData, &transfer); err == nil && transfer.Op == custodian.OpTransfer {
				asset := strings.ToLower(transfer.Asset)
				balance := staged[asset]
				if balance.LessThan(transfer.Amount) {
					return nil, fmt.Errorf("insufficient %v balance: have %v, need %v", transfer.Asset, balance, transfer.Amount)
				}
				staged[asset] = balance.Sub(transfer.Amount)
			}
		}
		results = append(results, json.RawMessage(`{"status":"ok"}`))
	}

	s.balances = staged
	s.calls = append(s.calls, calls...)
	return results, nil
}

// Balance returns the current balance of asset.
func (s *Service) Balance(ctx context.Context, asset string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[strings.ToLower(asset)], nil
}

// SetBalance overwrites an asset balance; tests use it to model deposits
// between creation and execution.
func (s *Service) SetBalance(asset string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[strings.ToLower(asset)] = amount
}

// Calls returns the forwarded calls in arrival order.
func (s *Service) Calls() []*custodian.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*custodian.Call(nil), s.calls...)
}

var _ custodian.Custodian = (*Service)(nil)
