package domain

import "time"

// Profile is a named subset of an owner's transactions, typically one
// uploaded bank statement. Its period is the default analytics date window
// when a caller scopes by profile without explicit dates.
type Profile struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"-"`
	Name        string     `json:"name"`
	FileName    string     `json:"fileName,omitempty"`
	StorageURI  string     `json:"-"`
	PeriodStart *time.Time `json:"periodStart,omitempty"`
	PeriodEnd   *time.Time `json:"periodEnd,omitempty"`
	UploadedAt  time.Time  `json:"uploadedAt"`
}
