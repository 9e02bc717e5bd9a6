package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundQuantity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already at scale", "1199.25", "1199.25"},
		{"truncates below half", "3.08641", "3.0864"},
		{"half rounds up", "0.00005", "0.0001"},
		{"half rounds up above one", "2.00005", "2.0001"},
		{"rounds up above half", "0.12346", "0.1235"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundQuantity(MustQuantity(tt.in))
			assert.True(t, got.Equal(MustQuantity(tt.want)),
				"RoundQuantity(%s) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestValidLossRate(t *testing.T) {
	assert.True(t, ValidLossRate(MustRate("0")))
	assert.True(t, ValidLossRate(MustRate("0.0025")))
	assert.True(t, ValidLossRate(MustRate("0.10")))
	assert.False(t, ValidLossRate(MustRate("0.1001")))
	assert.False(t, ValidLossRate(MustRate("-0.001")))
	// A whole percentage typed where a fraction was expected.
	assert.False(t, ValidLossRate(MustRate("2.5")))
}
