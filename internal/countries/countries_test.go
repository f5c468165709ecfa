package countries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "BGD", want: "Bangladesh"},
		{in: "moz", want: "Mozambique"},
		{in: " HTI ", want: "Haiti"},
		{in: "NPL", want: "Nepal"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Name(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestName_Invalid(t *testing.T) {
	for _, in := range []string{"", "BD", "050", "B1D", "ABC", "BANG"} {
		t.Run(in, func(t *testing.T) {
			_, err := Name(in)
			require.ErrorIs(t, err, ErrUnknownCountry)
		})
	}
}
