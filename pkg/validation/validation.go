package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	MinWorkers = 1
	MaxWorkers = 10

	MinPasswordLength = 6

	// DateLayout is the dd/mm/yyyy form accepted on the command line.
	DateLayout = "02/01/2006"
)

var validViews = map[string]bool{
	"day":   true,
	"week":  true,
	"month": true,
	"year":  true,
	"all":   true,
}

var validTypes = map[string]bool{
	"income":  true,
	"expense": true,
	"expanse": true,
}

func ValidateWorkerCount(workers int) error {
	if workers < MinWorkers || workers > MaxWorkers {
		return fmt.Errorf("worker count must be between %d and %d, got %d", MinWorkers, MaxWorkers, workers)
	}
	return nil
}

func ValidateNonEmptyString(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

func ValidateEmail(email string) error {
	if err := ValidateNonEmptyString("email", email); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address: %s", email)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be a positive number, got %d", amount)
	}
	return nil
}

// ValidateTransactionType accepts "income", "expense" and the backend's
// "expanse" spelling, case-insensitively.
func ValidateTransactionType(t string) error {
	if !validTypes[strings.ToLower(t)] {
		return fmt.Errorf("invalid transaction type: %s (must be one of: income, expense)", t)
	}
	return nil
}

func ValidateView(view string) error {
	if !validViews[strings.ToLower(view)] {
		return fmt.Errorf("invalid view: %s (must be one of: day, week, month, year, all)", view)
	}
	return nil
}

// ValidateDate checks a dd/mm/yyyy date.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid date: %s (expected dd/mm/yyyy)", date)
	}
	return nil
}

func ValidateTransactionID(id string) error {
	return ValidateNonEmptyString("transaction ID", id)
}
