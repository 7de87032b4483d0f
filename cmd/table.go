package cmd

import (
	"io"
	"strings"

	"github.com/eka-dev/ftracker/client"
	"github.com/eka-dev/ftracker/pkg/format"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetRowLine(false)
	return table
}

// transactionRow renders tx for the listing tables.
func transactionRow(tx client.Transaction, day string) []string {
	amount := format.Currency(tx.Amount)
	if tx.Type == client.Expense {
		amount = "-" + amount
	}
	return []string{
		tx.ID,
		day,
		tx.Type.Label(),
		amount,
		strings.ReplaceAll(tx.Description, "\n", " "),
	}
}
