package suppliers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTermsDays(t *testing.T) {
	cases := []struct {
		terms string
		want  int
	}{
		{"contado", 0},
		{"  Contado ", 0},
		{"cod", 0},
		{"contra entrega", 0},
		{"Net 30", 30},
		{"net 60", 60},
		{"60 dias", 60},
		{"90 días fecha factura", 90},
		{"", 30},
		{"a convenir", 30},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, TermsDays(tc.terms), "terms %q", tc.terms)
	}
}
