package debrid

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"boxstream/models"
)

var torboxPlanNames = map[int]string{
	0: "Free",
	1: "Essential",
	2: "Pro",
	3: "Standard",
}

// GetAccountInfo returns account/subscription info for a TorBox account
func (c *TorboxClient) GetAccountInfo(ctx context.Context) (*models.AccountInfo, error) {
	endpoint := fmt.Sprintf("%s/user/me?settings=false", c.baseURL)

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("user request: %w", err)
	}

	var result torboxResponse[struct {
		ID               int             `json:"id"`
		Email            string          `json:"email"`
		Plan             int             `json:"plan"`
		PremiumExpiresAt json.RawMessage `json:"premium_expires_at"`
		TotalDownloaded  int64           `json:"total_downloaded"`
		IsSubscribed     bool            `json:"is_subscribed"`
	}]

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode user response: %w", ErrUpstreamUnavailable, err)
	}

	if !result.Success {
		return nil, fmt.Errorf("%w: user request failed: %s", ErrUpstreamUnavailable, result.Detail)
	}

	info := &models.AccountInfo{
		Email:           result.Data.Email,
		Plan:            result.Data.Plan,
		PlanName:        torboxPlanNames[result.Data.Plan],
		TotalDownloaded: result.Data.TotalDownloaded,
	}
	if info.PlanName == "" {
		info.PlanName = fmt.Sprintf("Plan %d", result.Data.Plan)
	}

	// Derive username from email (TorBox doesn't have a username field)
	if atIdx := strings.Index(result.Data.Email, "@"); atIdx > 0 {
		info.Username = result.Data.Email[:atIdx]
	}

	// Plan > 0 or is_subscribed means premium
	if result.Data.Plan > 0 || result.Data.IsSubscribed {
		info.PremiumActive = true
		if expiresAt := ParseTimestamp(result.Data.PremiumExpiresAt); expiresAt != nil {
			info.ExpiresAt = expiresAt
			info.DaysRemaining = int(time.Until(*expiresAt).Hours() / 24)
			if info.DaysRemaining < 0 {
				info.DaysRemaining = 0
				info.PremiumActive = false
			}
		}
	}

	return info, nil
}
