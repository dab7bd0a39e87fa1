package access

import (
	"strings"
	"time"

	"github.com/mintkit/hub/internal/model"
)

// State is the result of evaluating whether Studio should be unlocked.
type State string

const (
	NoAccess           State = "no_access"
	TrialActive        State = "trial_active"
	SubscriptionActive State = "subscription_active"
)

// Granted reports whether the state unlocks the Studio link.
func (s State) Granted() bool {
	return s == TrialActive || s == SubscriptionActive
}

// Evaluate maps a subscription status and period end to an access state.
//
// Rules, fail-closed:
//   - "active" grants SubscriptionActive regardless of period end.
//   - "trial"/"trialing" grants TrialActive only while now is strictly
//     before the period end. A trial with no recorded end, or whose end has
//     been reached (now == end counts as expired), denies.
//   - Anything else — empty or unknown status, past_due, canceled — denies.
func Evaluate(status string, periodEnd *time.Time, now time.Time) State {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case model.StatusActive:
		return SubscriptionActive
	case "trial", model.StatusTrialing:
		if periodEnd == nil {
			return NoAccess
		}
		if now.Before(*periodEnd) {
			return TrialActive
		}
		return NoAccess
	default:
		return NoAccess
	}
}

// ForSubscription evaluates the latest subscription row; a nil subscription
// means no access.
func ForSubscription(sub *model.Subscription, now time.Time) State {
	if sub == nil {
		return NoAccess
	}
	return Evaluate(sub.Status, sub.CurrentPeriodEnd, now)
}

// MapStripeStatus reduces Stripe's subscription status set to the local one.
func MapStripeStatus(stripeStatus string) string {
	switch strings.ToLower(strings.TrimSpace(stripeStatus)) {
	case "trialing":
		return model.StatusTrialing
	case "active":
		return model.StatusActive
	case "canceled", "unpaid", "incomplete_expired":
		return model.StatusCanceled
	case "incomplete":
		return model.StatusIncomplete
	default:
		// past_due, paused, and anything Stripe adds later
		return model.StatusPastDue
	}
}
