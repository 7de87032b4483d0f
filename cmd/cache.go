package cmd

import (
	"github.com/eka-dev/ftracker/client"
	"github.com/eka-dev/ftracker/db"
)

const (
	periodCurrent = "current"
	periodLast    = "last"
)

// toCache flattens a listing into cache rows, current period first.
func toCache(resp client.TransactionResponse) []db.Transaction {
	rows := make([]db.Transaction, 0, len(resp.Current)+len(resp.Last))
	for _, tx := range resp.Current {
		rows = append(rows, cacheRow(tx, periodCurrent))
	}
	for _, tx := range resp.Last {
		rows = append(rows, cacheRow(tx, periodLast))
	}
	return rows
}

func cacheRow(tx client.Transaction, period string) db.Transaction {
	return db.Transaction{
		ID:          tx.ID,
		Period:      period,
		User:        tx.User,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Description: tx.Description,
		Created:     tx.CreatedAt,
		Updated:     tx.UpdatedAt,
	}
}

func fromCache(rows []db.Transaction) client.TransactionResponse {
	var resp client.TransactionResponse
	for _, row := range rows {
		tx := client.Transaction{
			ID:          row.ID,
			User:        row.User,
			Amount:      row.Amount,
			Type:        client.TransactionType(row.Type),
			Description: row.Description,
			CreatedAt:   row.Created,
			UpdatedAt:   row.Updated,
		}
		if row.Period == periodLast {
			resp.Last = append(resp.Last, tx)
		} else {
			resp.Current = append(resp.Current, tx)
		}
	}
	return resp
}
