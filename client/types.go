package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TransactionType is the kind of a transaction as the backend spells it.
type TransactionType string

const (
	Income TransactionType = "income"
	// Expense is spelled "expanse" on the wire.
	Expense TransactionType = "expanse"
)

// ParseTransactionType accepts "income", "expense" or "expanse" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense", "expanse":
		return Expense, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Label is the display name of the type.
func (t TransactionType) Label() string {
	if t == Expense {
		return "expense"
	}
	return string(t)
}

func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTransactionType(raw)
	if err != nil {
		// Keep unknown values so listing never fails on them.
		*t = TransactionType(raw)
		return nil
	}
	*t = parsed
	return nil
}

// ViewOption selects the period the backend aggregates transactions over.
type ViewOption string

const (
	ViewDay   ViewOption = "Day"
	ViewWeek  ViewOption = "Week"
	ViewMonth ViewOption = "Month"
	ViewYear  ViewOption = "Year"
	ViewAll   ViewOption = "All"

	DefaultView = ViewMonth
)

// Views lists every ViewOption in display order.
var Views = []ViewOption{ViewDay, ViewWeek, ViewMonth, ViewYear, ViewAll}

// ParseView maps a case-insensitive label to a ViewOption. An empty string
// yields DefaultView.
func ParseView(s string) (ViewOption, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultView, nil
	}
	for _, v := range Views {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

func (v ViewOption) String() string { return string(v) }

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          string          `json:"_id"`
	User        string          `json:"user"`
	Amount      int64           `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

// TransactionResponse holds the selected period and the one before it.
type TransactionResponse struct {
	Current []Transaction `json:"current"`
	Last    []Transaction `json:"last"`
}

// TransactionInput is the payload for creating or updating a transaction.
type TransactionInput struct {
	Amount      int64
	Type        TransactionType
	Description string
	CreatedAt   time.Time
}

// serverDateLayout is the date format the backend expects for createdAt.
const serverDateLayout = "2006-01-02"

type transactionRequest struct {
	Amount      int64           `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"createdAt"`
}

func (in TransactionInput) request() transactionRequest {
	return transactionRequest{
		Amount:      in.Amount,
		Type:        in.Type,
		Description: in.Description,
		CreatedAt:   in.CreatedAt.Format(serverDateLayout),
	}
}
