package domain

import (
	"fmt"
	"time"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanFree, PlanPro:
		return p, nil
	default:
		return "", fmt.Errorf("domain: unknown plan %q", s)
	}
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// BillingPeriod is the length of one mocked billing cycle.
const BillingPeriod = 30 * 24 * time.Hour

// Subscription is billing metadata only. No payment is ever taken.
type Subscription struct {
	ID               string
	OrganizationID   string
	Plan             Plan
	Status           SubscriptionStatus
	CurrentPeriodEnd time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
