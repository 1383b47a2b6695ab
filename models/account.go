package models

import "time"

// AccountInfo contains plan and usage information for the content account.
type AccountInfo struct {
	Email           string     `json:"email,omitempty"`
	Username        string     `json:"username,omitempty"`
	Plan            int        `json:"plan"`
	PlanName        string     `json:"planName"`
	PremiumActive   bool       `json:"premiumActive"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	DaysRemaining   int        `json:"daysRemaining,omitempty"`
	TotalDownloaded int64      `json:"totalDownloaded"`
}
