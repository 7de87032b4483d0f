// Package summary computes the dashboard figures shown for a transaction
// period: totals per type and their change against the previous period.
package summary

import (
	"sort"
	"time"

	"github.com/eka-dev/ftracker/client"
	"github.com/eka-dev/ftracker/pkg/format"
)

// Trend compares one total with the same total of the previous period.
type Trend struct {
	Total      int64
	LastTotal  int64
	Percentage int
	Up         bool
}

// Summary holds the income and expense trends of a period.
type Summary struct {
	Income  Trend
	Expense Trend
}

// Compute totals resp.Current and resp.Last by type.
func Compute(resp client.TransactionResponse) Summary {
	income, expense := totals(resp.Current)
	lastIncome, lastExpense := totals(resp.Last)
	return Summary{
		Income:  trend(income, lastIncome),
		Expense: trend(expense, lastExpense),
	}
}

func totals(txs []client.Transaction) (income, expense int64) {
	for _, tx := range txs {
		switch tx.Type {
		case client.Income:
			income += tx.Amount
		case client.Expense:
			expense += tx.Amount
		}
	}
	return income, expense
}

// trend reports 100% up when there is nothing to compare against.
func trend(current, last int64) Trend {
	t := Trend{Total: current, LastTotal: last}
	if last == 0 {
		if current != 0 {
			t.Percentage = 100
		}
		t.Up = true
		return t
	}
	change := current - last
	t.Percentage = int(float64(change) / float64(last) * 100)
	t.Up = change >= 0
	return t
}

// DayGroup is the transactions of one calendar day.
type DayGroup struct {
	Date         time.Time // midnight in the grouping location; zero for unparsable timestamps
	Transactions []client.Transaction
	Income       int64
	Expense      int64
}

// GroupByDay groups txs by the calendar day of CreatedAt in loc. Days are
// ordered newest first and transactions keep their input order within a day.
// Transactions with an unreadable timestamp end up in a final group with a
// zero Date.
func GroupByDay(txs []client.Transaction, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	index := make(map[time.Time]int)
	var groups []DayGroup
	for _, tx := range txs {
		var day time.Time
		if created, err := format.ParseServerTime(tx.CreatedAt); err == nil {
			created = created.In(loc)
			day = time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, loc)
		}
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Date: day})
		}
		g := &groups[i]
		g.Transactions = append(g.Transactions, tx)
		switch tx.Type {
		case client.Income:
			g.Income += tx.Amount
		case client.Expense:
			g.Expense += tx.Amount
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Date, groups[j].Date
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.After(b)
	})
	return groups
}
