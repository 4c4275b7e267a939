package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidShareCount(t *testing.T) {
	tests := []struct {
		name       string
		shareCount int
		want       bool
	}{
		{"below minimum", 1, false},
		{"zero", 0, false},
		{"negative", -5, false},
		{"minimum", 2, true},
		{"typical", 100, true},
		{"maximum", 10000, true},
		{"above maximum", 10001, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidShareCount(tt.shareCount))
		})
	}
}

func TestSharePercentage(t *testing.T) {
	tests := []struct {
		shareCount int
		want       string
	}{
		{100, "1.0000%"},
		{3, "33.3333%"},
		{2, "50.0000%"},
		{10000, "0.0100%"},
		{7, "14.2857%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SharePercentage(tt.shareCount))
	}
}

func TestTokenIDValid(t *testing.T) {
	assert.True(t, TokenID("0.0.123456").Valid())
	assert.True(t, TokenID("0.0.1").Valid())
	assert.False(t, TokenID("").Valid())
	assert.False(t, TokenID("0.0.0").Valid())
	assert.False(t, TokenID("0.0.").Valid())
	assert.False(t, TokenID("1.2.3").Valid())
	assert.False(t, TokenID("0x1234").Valid())
	assert.False(t, TokenID("0.0.12ab").Valid())
}

func TestIsValidNetwork(t *testing.T) {
	assert.True(t, IsValidNetwork(NetworkHederaTestnet))
	assert.True(t, IsValidNetwork(NetworkHederaMainnet))
	assert.False(t, IsValidNetwork(Network("hedera:previewnet")))
	assert.False(t, IsValidNetwork(Network("")))
}
