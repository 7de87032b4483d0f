package cmd

import (
	"strings"
	"testing"

	"github.com/eka-dev/ftracker/client"
	"github.com/eka-dev/ftracker/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryComparesWithPreviousMonth(t *testing.T) {
	e := newTestEnv(t)
	e.seed()
	e.login(t)

	stdout, _, err := e.run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Rp1.500.000")
	assert.Contains(t, stdout, "Rp1.000.000")
	assert.Contains(t, stdout, "▲ 50%")
	assert.Contains(t, stdout, "▼ 50%")
	assert.Contains(t, stdout, "Balance: Rp1.475.000")
}

func TestSummaryByDayListsNewestDayFirst(t *testing.T) {
	e := newTestEnv(t)
	e.seed()
	e.login(t)

	stdout, _, err := e.run(t, "summary", "--by-day")
	require.NoError(t, err)
	friday := strings.Index(stdout, "Friday, 21 November 2025")
	thursday := strings.Index(stdout, "Thursday, 20 November 2025")
	require.NotEqual(t, -1, friday)
	require.NotEqual(t, -1, thursday)
	assert.Less(t, friday, thursday)
	assert.Contains(t, stdout, "(+Rp1.500.000 / -Rp0)")
}

func TestSummaryAllHasNoComparison(t *testing.T) {
	e := newTestEnv(t)
	e.seed()
	e.login(t)

	stdout, _, err := e.run(t, "summary", "-v", "all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Rp2.500.000")
	assert.Contains(t, stdout, "Rp75.000")
	assert.NotContains(t, stdout, "%")
}

func TestTrendRow(t *testing.T) {
	row := trendRow("income", summary.Trend{Up: true}, client.ViewMonth)
	assert.Equal(t, []string{"income", "Rp0", "Rp0", "▲ 0%"}, row)

	row = trendRow("expense", summary.Trend{Total: 100, LastTotal: 400, Percentage: -75}, client.ViewWeek)
	assert.Equal(t, "▼ 75%", row[3])

	row = trendRow("income", summary.Trend{Total: 100, Percentage: 100, Up: true}, client.ViewAll)
	assert.Equal(t, "-", row[3])
}
