// Package calldata parses router call data of the form
//
//	swap(in:USDC,out:WETH,amountIn:100,amountOut:0.05,to:0xabc);donate(to:0xdef)
//
// into recognized swap legs. Selectors other than "swap" are legal call data
// but carry no accounting weight: they are skipped, not rejected.
package calldata

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/viant/parsly"
)

// Leg is one recognized swap within router call data.
type Leg struct {
	AssetIn   string
	AssetOut  string
	AmountIn  decimal.Decimal
	AmountOut decimal.Decimal
	Recipient string
}

// SwapSelector is the only selector parsed into a accounting-relevant leg.
const SwapSelector = "swap"

// Parse parses router call data into recognized swap legs. The second result
// counts legs with unrecognized selectors, which are skipped for accounting.
// Syntactically malformed input fails.
func Parse(input []byte) ([]*Leg, int, error) {
	cursor := parsly.NewCursor("", input, 0)
	var legs []*Leg
	skipped := 0

	for {
		matched := cursor.MatchAfterOptional(whitespaceToken, identifierToken)
		if matched.Code != identifierToken.Code {
			return nil, 0, cursor.NewError(identifierToken)
		}
		selector := matched.Text(cursor)

		args, err := parseArgs(cursor)
		if err != nil {
			return nil, 0, err
		}

		if strings.EqualFold(selector, SwapSelector) {
			leg, err := legOf(args)
			if err != nil {
				return nil, 0, err
			}
			legs = append(legs, leg)
		} else {
			skipped++
		}

		matched = cursor.MatchAfterOptional(whitespaceToken, semicolonToken)
		if matched.Code != semicolonToken.Code {
			break
		}
	}
	if cursor.Pos < cursor.InputSize && len(strings.TrimSpace(string(cursor.Input[cursor.Pos:]))) > 0 {
		return nil, 0, cursor.NewError(semicolonToken)
	}
	return legs, skipped, nil
}

func parseArgs(cursor *parsly.Cursor) (map[string]string, error) {
	matched := cursor.MatchAfterOptional(whitespaceToken, openParenToken)
	if matched.Code != openParenToken.Code {
		return nil, cursor.NewError(openParenToken)
	}
	args := make(map[string]string)

	// Empty argument list.
	matched = cursor.MatchAfterOptional(whitespaceToken, closeParenToken)
	if matched.Code == closeParenToken.Code {
		return args, nil
	}

	for {
		matched = cursor.MatchAfterOptional(whitespaceToken, identifierToken)
		if matched.Code != identifierToken.Code {
			return nil, cursor.NewError(identifierToken)
		}
		key := matched.Text(cursor)

		matched = cursor.MatchOne(colonToken)
		if matched.Code != colonToken.Code {
			return nil, cursor.NewError(colonToken)
		}

		matched = cursor.MatchOne(valueToken)
		if matched.Code != valueToken.Code {
			return nil, cursor.NewError(valueToken)
		}
		args[key] = strings.TrimSpace(matched.Text(cursor))

		matched = cursor.MatchAny(commaToken, closeParenToken)
		switch matched.Code {
		case commaToken.Code:
		case closeParenToken.Code:
			return args, nil
		default:
			return nil, cursor.NewError(closeParenToken)
		}
	}
}

func legOf(args map[string]string) (*Leg, error) {
	leg := &Leg{
		AssetIn:   args["in"],
		AssetOut:  args["out"],
		Recipient: args["to"],
	}
	var err error
	if leg.AmountIn, err = amountOf(args, "amountIn"); err != nil {
		return nil, err
	}
	if leg.AmountOut, err = amountOf(args, "amountOut"); err != nil {
		return nil, err
	}
	return leg, nil
}

func amountOf(args map[string]string, key string) (decimal.Decimal, error) {
	text, ok := args[key]
	if !ok || text == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(text)
}
