// Package oracle defines the accounting oracle used to value assets in the
// policy reference asset. Prices are fetched fresh at every validation, never
// memoized, so percentage ceilings track the live market.
package oracle

import (
	"context"
	"strings"

	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/shopspring/decimal"
)

// Oracle values asset amounts in a reference asset.
type Oracle interface {
	// Value returns amount of asset expressed in the reference asset. An
	// unsupported pair fails; it never silently values as zero.
	Value(ctx context.Context, asset, referenceAsset string, amount decimal.Decimal) (decimal.Decimal, error)

	// IsSupportedPair reports whether the oracle can value asset in
	// referenceAsset.
	IsSupportedPair(ctx context.Context, asset, referenceAsset string) (bool, error)
}

// Normalize values amount in the reference asset, short-circuiting the
// identity pair. Validation paths share it so an unsupported pair surfaces a
// payload error before any budget is touched.
func Normalize(ctx context.Context, o Oracle, asset, referenceAsset string, amount decimal.Decimal) (decimal.Decimal, error) {
	if referenceAsset == "" || strings.EqualFold(asset, referenceAsset) {
		return amount, nil
	}
	supported, err := o.IsSupportedPair(ctx, asset, referenceAsset)
	if err != nil {
		return decimal.Zero, err
	}
	if !supported {
		return decimal.Zero, types.NewErrorf(types.KindPayload, "unsupported pair %v/%v", asset, referenceAsset)
	}
	return o.Value(ctx, asset, referenceAsset, amount)
}
