package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	require.Equal(t, 10.12, Round2(10.1249))
	require.Equal(t, 10.13, Round2(10.125))
	require.Equal(t, 0.0, Round2(0))
	require.Equal(t, 199.99, Round2(199.994))
}

func TestFormatARS(t *testing.T) {
	// es-AR groups with dots and uses a comma decimal separator.
	require.Equal(t, "$ 1.234,50", FormatARS(1234.5))
	require.Equal(t, "$ 0,00", FormatARS(0))
}
