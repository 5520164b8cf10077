package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-engine/internal/core"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "Q20250001", core.FormatNumber("Q2025", 1))
	assert.Equal(t, "Q20259999", core.FormatNumber("Q2025", 9999))
	assert.Equal(t, "Q202510000", core.FormatNumber("Q2025", 10000))
	assert.Equal(t, "CUST20260042", core.FormatNumber(core.CustomerNumbers.Prefix(2026), 42))
}

func TestNextFromMax(t *testing.T) {
	next, err := core.NextFromMax("Q2025", "Q20250002")
	require.NoError(t, err)
	assert.Equal(t, "Q20250003", next)

	first, err := core.NextFromMax("Q2025", "")
	require.NoError(t, err)
	assert.Equal(t, "Q20250001", first)

	_, err = core.NextFromMax("Q2025", "Q2024x001")
	assert.Error(t, err)
}

func TestParseSequence(t *testing.T) {
	n, err := core.ParseSequence("Q2025", "Q20250017")
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)

	for _, bad := range []string{"Q2024001", "Q2025", "Q2025abcd", "X20250001"} {
		_, err := core.ParseSequence("Q2025", bad)
		assert.Error(t, err, bad)
	}
}

func TestNumberKind_Prefix(t *testing.T) {
	assert.Equal(t, "Q2025", core.QuoteNumbers.Prefix(2025))
	assert.Equal(t, "CUST2025", core.CustomerNumbers.Prefix(2025))
}
