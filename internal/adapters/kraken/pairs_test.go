package kraken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairCode(t *testing.T) {
	tests := []struct {
		pair string
		want string
	}{
		{"XBTUSD", "XXBTZUSD"},
		{"xbtusd", "XXBTZUSD"},
		{"ETHUSD", "XETHZUSD"},
		{"ETHEUR", "XETHZEUR"},
		{"XETHUSD", "XETHZUSD"},
		{"ADAUSD", "XADAZUSD"},
	}

	for _, tt := range tests {
		t.Run(tt.pair, func(t *testing.T) {
			got, err := PairCode(tt.pair)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPairCode_TooShort(t *testing.T) {
	_, err := PairCode("USD")
	assert.Error(t, err)
}
