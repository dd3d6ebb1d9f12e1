package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatSequence(t *testing.T) {
	require.Equal(t, "RC-000001", FormatSequence("RC", 1))
	require.Equal(t, "RC-000042", FormatSequence("RC", 42))
	require.Equal(t, "PO-999999", FormatSequence("PO", 999999))
	require.Equal(t, "PO-1000000", FormatSequence("PO", 1000000))
}

func TestFallbackSequence(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, "RC-1772366400000", FallbackSequence("RC", at))
}
