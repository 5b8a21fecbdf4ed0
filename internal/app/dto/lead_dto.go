package dto

import "time"

type Lead struct {
	LeadID      string     `json:"lead_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Company     string     `json:"company,omitempty"`
	Source      string     `json:"source,omitempty"`
	Status      string     `json:"status"`
	ClientID    *string    `json:"client_id,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	ConvertedAt *time.Time `json:"convertedAt,omitempty"`
}

type Contract struct {
	ContractID  string     `json:"contract_id"`
	ClientID    string     `json:"client_id"`
	Title       string     `json:"title"`
	AmountCents int64      `json:"amount_cents"`
	Status      string     `json:"status"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	SentAt      *time.Time `json:"sentAt,omitempty"`
	SignedAt    *time.Time `json:"signedAt,omitempty"`
}
