package db

import "time"

// tokenRowID is the primary key of the only row in the tokens table.
const tokenRowID = 1

// Token represents the persisted session credential. The table holds at most
// one row; the column names follow the key names the mobile client used.
type Token struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	AccessToken  string    `gorm:"column:token_key" json:"access_token,omitempty"`
	RefreshToken string    `gorm:"column:refresh_token_key" json:"refresh_token,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Transaction is a cached copy of a transaction fetched from the backend,
// kept for offline listing.
type Transaction struct {
	ID          string `gorm:"primaryKey" json:"_id"`
	View        string `gorm:"primaryKey;column:view_name" json:"view"`
	Period      string `gorm:"index" json:"period"` // "current" or "last"
	User        string `json:"user"`
	Amount      int64  `json:"amount"`
	Type        string `gorm:"index" json:"type"`
	Description string `json:"description"`
	Created     string `json:"createdAt"`
	Updated     string `json:"updatedAt"`
	Position    int    `json:"-"`
}
