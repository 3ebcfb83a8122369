package engine

import (
	"strings"
	"sync"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/transaction"
	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/adam-vault/adam-contract-core-sub000/service/authz"
	"github.com/adam-vault/adam-contract-core-sub000/service/usage"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant"
)

// Instance is one registered policy: an immutable configuration, the bound
// variant strategy and an append-only transaction ledger with its usage
// counters. Every mutating operation serializes behind mu so that ceiling
// checks always observe a consistent counter snapshot; the ledger itself is
// an arena indexed by transaction id.
type Instance struct {
	mu sync.Mutex

	creator    string
	config     *policy.Config
	variant    variant.Variant
	resolver   authz.Resolver
	accountant *usage.Accountant

	counter usage.Counter
	ledger  []*transaction.Transaction
	index   map[uint64]int
	nextID  uint64

	// claimed holds consumed identities of claim and reward policies, keyed
	// lower-case.
	claimed map[string]bool
}

func newInstance(creator string, config *policy.Config, bound variant.Variant, resolver authz.Resolver, accountant *usage.Accountant) *Instance {
	return &Instance{
		creator:    creator,
		config:     config,
		variant:    bound,
		resolver:   resolver,
		accountant: accountant,
		index:      make(map[uint64]int),
		nextID:     1,
		claimed:    make(map[string]bool),
	}
}

// ID returns the policy identifier.
func (i *Instance) ID() string {
	return i.config.ID
}

// append adds a transaction to the ledger arena. Callers hold mu.
func (i *Instance) append(t *transaction.Transaction) {
	i.index[t.ID] = len(i.ledger)
	i.ledger = append(i.ledger, t)
}

// lookup resolves a ledger entry by id. Callers hold mu.
func (i *Instance) lookup(id uint64) (*transaction.Transaction, error) {
	at, ok := i.index[id]
	if !ok {
		return nil, types.NewErrorf(types.KindNotFound, "transaction %v not found in policy %v", id, i.config.ID)
	}
	return i.ledger[at], nil
}

// hasClaimed reports whether identity already consumed its claim. Callers
// hold mu.
func (i *Instance) hasClaimed(identity string) bool {
	return i.claimed[strings.ToLower(identity)]
}

// markClaimed consumes identities after a successful execution. Callers hold
// mu.
func (i *Instance) markClaimed(identities []string) {
	for _, identity := range identities {
		i.claimed[strings.ToLower(identity)] = true
	}
}
