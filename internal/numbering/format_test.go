package numbering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	at := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	num, err := Format(KindOrder, at, 7)
	require.NoError(t, err)
	assert.Equal(t, "ORD/2608/0007", num)

	num, err = Format(KindInvoice, at, 42)
	require.NoError(t, err)
	assert.Equal(t, "INV/260829/0042", num)
}

func TestFormatWideSequenceKeepsDigits(t *testing.T) {
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	num, err := Format(KindOrder, at, 12345)
	require.NoError(t, err)
	assert.Equal(t, "ORD/2601/12345", num)
}

func TestFormatRejectsBadInput(t *testing.T) {
	at := time.Now()

	_, err := Format(KindOrder, at, 0)
	assert.Error(t, err)

	_, err = Format(Kind("receipt"), at, 1)
	assert.Error(t, err)
}
