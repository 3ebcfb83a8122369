package variant

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/viant/x"
)

// PayloadTyper is optionally implemented by prototypes to expose their
// instruction payload type for introspection by tooling.
type PayloadTyper interface {
	PayloadType() *x.Type
}

// Registry holds the known policy kinds and their payload types.
type Registry struct {
	mux        sync.RWMutex
	prototypes map[policy.Kind]Prototype
	types      *x.Registry
}

// NewRegistry creates a registry with the supplied prototypes.
func NewRegistry(prototypes ...Prototype) *Registry {
	ret := &Registry{
		prototypes: make(map[policy.Kind]Prototype),
		types:      x.NewRegistry(),
	}
	for _, prototype := range prototypes {
		ret.Register(prototype)
	}
	return ret
}

// Register adds a prototype, replacing any previous registration for its
// kind.
func (r *Registry) Register(prototype Prototype) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.prototypes[prototype.Kind()] = prototype
	if typed, ok := prototype.(PayloadTyper); ok {
		if payloadType := typed.PayloadType(); payloadType != nil {
			r.types.Register(payloadType)
		}
	}
}

// Lookup returns the prototype for kind, or nil.
func (r *Registry) Lookup(kind policy.Kind) Prototype {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.prototypes[kind]
}

// Kinds lists the registered kinds.
func (r *Registry) Kinds() []policy.Kind {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret := make([]policy.Kind, 0, len(r.prototypes))
	for kind := range r.prototypes {
		ret = append(ret, kind)
	}
	return ret
}

// Types exposes the payload type registry.
func (r *Registry) Types() *x.Registry {
	return r.types
}

// Bind resolves the prototype for config.Kind and binds it to the
// configuration. An unknown kind fails with a configuration error.
func (r *Registry) Bind(ctx context.Context, config *policy.Config) (Variant, error) {
	prototype := r.Lookup(config.Kind)
	if prototype == nil {
		return nil, types.NewErrorf(types.KindConfiguration, "unknown policy kind %v", config.Kind)
	}
	return prototype.Bind(ctx, config)
}

// DecodeAs strictly decodes a raw instruction payload into T; unknown fields
// and malformed JSON fail with a payload error so that decode(encode(x)) == x
// holds for well-formed payloads only.
func DecodeAs[T any](raw json.RawMessage) (*T, error) {
	if len(raw) == 0 {
		return nil, types.NewError(types.KindPayload, "empty instruction payload")
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	payload := new(T)
	if err := decoder.Decode(payload); err != nil {
		return nil, types.WrapError(types.KindPayload, "malformed instruction payload", err)
	}
	return payload, nil
}

// DecodeParams strictly decodes kind-specific configuration parameters,
// failing with a configuration error.
func DecodeParams[T any](raw json.RawMessage) (*T, error) {
	params := new(T)
	if len(raw) == 0 {
		return params, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(params); err != nil {
		return nil, types.WrapError(types.KindConfiguration, "invalid kind parameters", err)
	}
	return params, nil
}
