package kraken

import (
	"fmt"
	"strings"
)

// PairCode traduce un ticker común (XBTUSD, ETHUSD) al código de par que
// usa Kraken en sus respuestas (XXBTZUSD, XETHZUSD). Las reglas:
//
//	XBT → XXBT; bases que no empiezan por X/Z reciben prefijo X
//	quotes que no empiezan por X/Z reciben prefijo Z
func PairCode(pair string) (string, error) {
	if len(pair) < 6 {
		return "", fmt.Errorf("kraken.PairCode: pair %q too short", pair)
	}

	base := strings.ToUpper(pair[:len(pair)-3])
	quote := strings.ToUpper(pair[len(pair)-3:])

	var baseCode string
	switch {
	case base == "XBT":
		baseCode = "XXBT"
	case base[0] != 'X' && base[0] != 'Z':
		baseCode = "X" + base
	default:
		baseCode = base
	}

	quoteCode := quote
	if quote[0] != 'X' && quote[0] != 'Z' {
		quoteCode = "Z" + quote
	}

	return baseCode + quoteCode, nil
}
