package cmd

import (
	"fmt"

	"github.com/eka-dev/ftracker/client"
	"github.com/eka-dev/ftracker/pkg/format"
	"github.com/eka-dev/ftracker/summary"
	"github.com/spf13/cobra"
)

func summaryCmd(a *app) *cobra.Command {
	var viewFlag string
	var offline, byDay bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income and expense totals against the previous period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.resolveView(viewFlag)
			if err != nil {
				return err
			}
			resp, err := a.fetchTransactions(cmd.Context(), view, offline)
			if err != nil {
				return err
			}

			s := summary.Compute(resp)
			table := newTable(cmd.OutOrStdout(), "Type", "This period", "Previous period", "Change")
			table.Append(trendRow(client.Income.Label(), s.Income, view))
			table.Append(trendRow(client.Expense.Label(), s.Expense, view))
			table.Render()
			cmd.Printf("Balance: %s\n", format.Currency(s.Income.Total-s.Expense.Total))

			if byDay {
				printDays(cmd, summary.GroupByDay(resp.Current, a.location()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&viewFlag, "view", "v", "", "Period to summarize [Day, Week, Month, Year, All]")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the last fetched copy instead of calling the server")
	cmd.Flags().BoolVar(&byDay, "by-day", false, "Also list the transactions grouped by day")
	return cmd
}

func trendRow(label string, t summary.Trend, view client.ViewOption) []string {
	change := "-"
	// "All" has no previous period to compare with.
	if view != client.ViewAll {
		arrow := "▼"
		if t.Up {
			arrow = "▲"
		}
		pct := t.Percentage
		if pct < 0 {
			pct = -pct
		}
		change = fmt.Sprintf("%s %d%%", arrow, pct)
	}
	return []string{label, format.Currency(t.Total), format.Currency(t.LastTotal), change}
}

func printDays(cmd *cobra.Command, groups []summary.DayGroup) {
	for _, g := range groups {
		day := "Unknown date"
		if !g.Date.IsZero() {
			day = format.Day(g.Date)
		}
		cmd.Println()
		cmd.Printf("%s  (+%s / -%s)\n", day, format.Currency(g.Income), format.Currency(g.Expense))

		table := newTable(cmd.OutOrStdout(), "ID", "Type", "Amount", "Description")
		for _, tx := range g.Transactions {
			row := transactionRow(tx, "")
			table.Append([]string{row[0], row[2], row[3], row[4]})
		}
		table.Render()
	}
}
