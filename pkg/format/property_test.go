package format

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyGroupsEveryAmount(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		amount := r.Int63n(1_000_000_000_000) - 500_000_000_000
		out := Currency(amount)

		digits := strings.TrimPrefix(out, "-")
		require.True(t, strings.HasPrefix(digits, "Rp"), out)
		assert.Equal(t, amount < 0, strings.HasPrefix(out, "-"), out)

		groups := strings.Split(strings.TrimPrefix(digits, "Rp"), ".")
		for j, g := range groups {
			if j > 0 {
				assert.Len(t, g, 3, "group %q of %s", g, out)
			} else {
				assert.True(t, len(g) >= 1 && len(g) <= 3, "leading group %q of %s", g, out)
			}
		}

		abs := amount
		if abs < 0 {
			abs = -abs
		}
		assert.Equal(t, strconv.FormatInt(abs, 10), strings.Join(groups, ""), out)
	}
}

func TestServerDateRoundTripsInputDates(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		day := start.AddDate(0, 0, r.Intn(20000))
		input := day.Format(InputDateLayout)

		server, err := ServerDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, day.Format(ServerDateLayout), server)

		parsed, err := ParseInputDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, day.Format(ServerDateLayout), parsed.Format(ServerDateLayout))
	}
}
