package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "Rp0"},
		{500, "Rp500"},
		{1500, "Rp1.500"},
		{1500000, "Rp1.500.000"},
		{-25000, "-Rp25.000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.amount))
	}
}

func TestParseServerTime(t *testing.T) {
	got, err := ParseServerTime("2025-11-21T08:30:15.250Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 21, 8, 30, 15, 250_000_000, time.UTC), got)

	got, err = ParseServerTime("2025-11-21T08:30:15Z")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year())

	_, err = ParseServerTime("21/11/2025")
	assert.Error(t, err)
}

func TestDay(t *testing.T) {
	assert.Equal(t, "Friday, 21 November 2025", Day(time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Monday, 03 March 2025", Day(time.Date(2025, 3, 3, 23, 0, 0, 0, time.UTC)))
}

func TestServerDay(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 20:00 UTC is already the next day in Jakarta.
	assert.Equal(t, "Saturday, 22 November 2025", ServerDay("2025-11-21T20:00:00.000Z", jakarta))
	assert.Equal(t, "Friday, 21 November 2025", ServerDay("2025-11-21T20:00:00.000Z", nil))
	assert.Empty(t, ServerDay("garbage", nil))
}

func TestServerDate(t *testing.T) {
	got, err := ServerDate("21/11/2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-21", got)

	_, err = ServerDate("2025-11-21")
	assert.Error(t, err)
	_, err = ServerDate("31/02/2025")
	assert.Error(t, err)
}
