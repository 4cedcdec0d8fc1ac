package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "0.000000000000000001"},
		{"1000000000000000000", "1"},
		{"1500000000000000000", "1.5"},
		{"123456789000000000000000", "123456.789"},
	}
	for _, tt := range tests {
		v, ok := new(big.Int).SetString(tt.in, 10)
		require.True(t, ok)
		assert.Equal(t, tt.want, FormatEther(v), tt.in)
	}
	assert.Equal(t, "0", FormatEther(nil))
}

func TestParseEther(t *testing.T) {
	v, err := ParseEther("0.05")
	require.NoError(t, err)
	assert.Equal(t, "50000000000000000", v.String())

	v, err = ParseEther("2")
	require.NoError(t, err)
	assert.Equal(t, "2000000000000000000", v.String())

	_, err = ParseEther("0.0000000000000000001")
	assert.Error(t, err)

	_, err = ParseEther("abc")
	assert.Error(t, err)
}
