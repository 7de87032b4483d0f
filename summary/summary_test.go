package summary

import (
	"testing"
	"time"

	"github.com/eka-dev/ftracker/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id string, typ client.TransactionType, amount int64, created string) client.Transaction {
	return client.Transaction{ID: id, Type: typ, Amount: amount, CreatedAt: created}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name          string
		current, last int64
		wantPct       int
		wantUp        bool
	}{
		{"both zero", 0, 0, 0, true},
		{"nothing last period", 5000, 0, 100, true},
		{"doubled", 2000, 1000, 100, true},
		{"unchanged", 1000, 1000, 0, true},
		{"dropped to zero", 0, 1000, -100, false},
		{"truncates toward zero", 1000, 3000, -66, false},
		{"small rise truncates", 1005, 1000, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trend(tt.current, tt.last)
			assert.Equal(t, tt.wantPct, got.Percentage)
			assert.Equal(t, tt.wantUp, got.Up)
			assert.Equal(t, tt.current, got.Total)
			assert.Equal(t, tt.last, got.LastTotal)
		})
	}
}

func TestCompute(t *testing.T) {
	resp := client.TransactionResponse{
		Current: []client.Transaction{
			tx("1", client.Income, 3000000, "2025-11-01T00:00:00.000Z"),
			tx("2", client.Expense, 150000, "2025-11-02T00:00:00.000Z"),
			tx("3", client.Expense, 50000, "2025-11-03T00:00:00.000Z"),
			tx("4", client.TransactionType("gift"), 999, "2025-11-03T00:00:00.000Z"),
		},
		Last: []client.Transaction{
			tx("5", client.Income, 2000000, "2025-10-01T00:00:00.000Z"),
			tx("6", client.Expense, 400000, "2025-10-02T00:00:00.000Z"),
		},
	}

	s := Compute(resp)

	assert.Equal(t, int64(3000000), s.Income.Total)
	assert.Equal(t, 50, s.Income.Percentage)
	assert.True(t, s.Income.Up)
	assert.Equal(t, int64(200000), s.Expense.Total)
	assert.Equal(t, -50, s.Expense.Percentage)
	assert.False(t, s.Expense.Up)
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(client.TransactionResponse{})
	assert.Equal(t, Trend{Up: true}, s.Income)
	assert.Equal(t, Trend{Up: true}, s.Expense)
}

func TestGroupByDay(t *testing.T) {
	txs := []client.Transaction{
		tx("a", client.Expense, 100, "2025-11-20T09:00:00.000Z"),
		tx("b", client.Income, 500, "2025-11-21T10:00:00.000Z"),
		tx("c", client.Expense, 200, "2025-11-20T23:30:00.000Z"),
		tx("d", client.Income, 1, "not a date"),
		tx("e", client.Expense, 300, "2025-11-21T01:00:00.000Z"),
	}

	groups := GroupByDay(txs, time.UTC)

	require.Len(t, groups, 3)
	assert.Equal(t, time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC), groups[0].Date)
	assert.Equal(t, []string{"b", "e"}, ids(groups[0].Transactions))
	assert.Equal(t, int64(500), groups[0].Income)
	assert.Equal(t, int64(300), groups[0].Expense)

	assert.Equal(t, []string{"a", "c"}, ids(groups[1].Transactions))
	assert.Equal(t, int64(300), groups[1].Expense)

	assert.True(t, groups[2].Date.IsZero())
	assert.Equal(t, []string{"d"}, ids(groups[2].Transactions))
}

func TestGroupByDayUsesLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	txs := []client.Transaction{
		tx("a", client.Expense, 100, "2025-11-20T18:00:00.000Z"),
		tx("b", client.Expense, 100, "2025-11-20T16:00:00.000Z"),
	}

	groups := GroupByDay(txs, jakarta)

	require.Len(t, groups, 2)
	assert.Equal(t, 21, groups[0].Date.Day())
	assert.Equal(t, []string{"a"}, ids(groups[0].Transactions))
	assert.Equal(t, 20, groups[1].Date.Day())
}

func ids(txs []client.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}
