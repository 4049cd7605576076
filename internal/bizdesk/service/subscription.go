package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

// SubscriptionService reads and changes the mocked billing plan. No payment
// provider is involved.
type SubscriptionService struct {
	Store store.Store
	Clock Clock
}

func (s *SubscriptionService) Get(ctx context.Context, p domain.Principal) (domain.Subscription, error) {
	if err := Authorize(ctx, p, OpSubscriptionRead); err != nil {
		return domain.Subscription{}, err
	}
	return s.Store.Subscriptions().GetSubscriptionByOrganization(ctx, p.OrganizationID())
}

// ChangePlan switches the plan and starts a new billing period. Choosing the
// current plan of an active subscription changes nothing.
func (s *SubscriptionService) ChangePlan(ctx context.Context, p domain.Principal, plan string) (domain.Subscription, error) {
	if err := Authorize(ctx, p, OpSubscriptionManage); err != nil {
		return domain.Subscription{}, err
	}

	next, err := domain.ParsePlan(plan)
	if err != nil {
		return domain.Subscription{}, invalid("plan must be free or pro")
	}

	var out domain.Subscription
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		sub, err := tx.Subscriptions().GetSubscriptionByOrganization(ctx, p.OrganizationID())
		if err != nil {
			return err
		}
		if sub.Plan == next && sub.Status == domain.SubscriptionActive {
			out = sub
			return nil
		}

		now := s.Clock.now()
		sub.Plan = next
		sub.Status = domain.SubscriptionActive
		sub.CurrentPeriodEnd = now.Add(domain.BillingPeriod)
		sub.UpdatedAt = now
		out = sub
		return tx.Subscriptions().UpdateSubscription(ctx, sub)
	})
	if err != nil {
		return domain.Subscription{}, err
	}

	slogx.FromContext(ctx).Info("subscription plan changed",
		slog.String("organization_id", out.OrganizationID),
		slog.String("plan", string(out.Plan)),
		slog.String("user_id", p.UserID()),
	)
	return out, nil
}
