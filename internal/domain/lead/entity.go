package lead

import "time"

type Status string

const (
	StatusNew       Status = "NEW"
	StatusConverted Status = "CONVERTED"
)

type Lead struct {
	ID          string
	Name        string
	Email       string
	Company     string
	Source      string
	Status      Status
	ClientID    *string
	CreatedAt   *time.Time
	ConvertedAt *time.Time
}
