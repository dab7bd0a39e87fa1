package access

import (
	"testing"
	"time"

	"github.com/mintkit/hub/internal/model"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestActiveSubscriptionGrants(t *testing.T) {
	past := ptr(now.Add(-30 * 24 * time.Hour))

	if got := Evaluate("active", past, now); got != SubscriptionActive {
		t.Errorf("Evaluate(active, past end) = %q, want %q", got, SubscriptionActive)
	}
	if got := Evaluate("active", nil, now); got != SubscriptionActive {
		t.Errorf("Evaluate(active, nil end) = %q, want %q", got, SubscriptionActive)
	}
}

func TestActiveTakesPrecedenceOverTrialWindow(t *testing.T) {
	future := ptr(now.Add(24 * time.Hour))

	if got := Evaluate("active", future, now); got != SubscriptionActive {
		t.Errorf("Evaluate(active, future end) = %q, want %q", got, SubscriptionActive)
	}
}

func TestTrialingGrantsBeforeEnd(t *testing.T) {
	// Day 5 of a 14-day trial.
	end := ptr(now.Add(9 * 24 * time.Hour))

	if got := Evaluate("trialing", end, now); got != TrialActive {
		t.Errorf("Evaluate(trialing, day 5) = %q, want %q", got, TrialActive)
	}
	if got := Evaluate("trial", end, now); got != TrialActive {
		t.Errorf("Evaluate(trial, day 5) = %q, want %q", got, TrialActive)
	}
}

func TestTrialingDeniesAfterEnd(t *testing.T) {
	end := ptr(now.Add(-6 * 24 * time.Hour))

	if got := Evaluate("trialing", end, now); got != NoAccess {
		t.Errorf("Evaluate(trialing, day 20) = %q, want %q", got, NoAccess)
	}
}

func TestTrialingBoundaryIsExpired(t *testing.T) {
	if got := Evaluate("trialing", ptr(now), now); got != NoAccess {
		t.Errorf("Evaluate(trialing, end == now) = %q, want %q", got, NoAccess)
	}
}

func TestTrialingWithoutEndDenies(t *testing.T) {
	if got := Evaluate("trialing", nil, now); got != NoAccess {
		t.Errorf("Evaluate(trialing, nil end) = %q, want %q", got, NoAccess)
	}
}

func TestDeniedStatuses(t *testing.T) {
	future := ptr(now.Add(24 * time.Hour))
	for _, status := range []string{"", "past_due", "canceled", "incomplete", "bogus"} {
		if got := Evaluate(status, future, now); got != NoAccess {
			t.Errorf("Evaluate(%q) = %q, want %q", status, got, NoAccess)
		}
	}
}

func TestEvaluateIsCaseInsensitive(t *testing.T) {
	if got := Evaluate("  Active ", nil, now); got != SubscriptionActive {
		t.Errorf("Evaluate(' Active ') = %q, want %q", got, SubscriptionActive)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	end := ptr(now.Add(time.Hour))

	first := Evaluate("trialing", end, now)
	second := Evaluate("trialing", end, now)
	if first != second {
		t.Errorf("repeated evaluation differs: %q then %q", first, second)
	}
}

func TestForSubscriptionNil(t *testing.T) {
	if got := ForSubscription(nil, now); got != NoAccess {
		t.Errorf("ForSubscription(nil) = %q, want %q", got, NoAccess)
	}
}

func TestForSubscription(t *testing.T) {
	end := now.Add(48 * time.Hour)
	sub := &model.Subscription{Status: model.StatusTrialing, CurrentPeriodEnd: &end}

	if got := ForSubscription(sub, now); got != TrialActive {
		t.Errorf("ForSubscription(trialing) = %q, want %q", got, TrialActive)
	}
}

func TestGranted(t *testing.T) {
	if NoAccess.Granted() {
		t.Error("NoAccess.Granted() = true")
	}
	if !TrialActive.Granted() {
		t.Error("TrialActive.Granted() = false")
	}
	if !SubscriptionActive.Granted() {
		t.Error("SubscriptionActive.Granted() = false")
	}
}

func TestMapStripeStatus(t *testing.T) {
	cases := map[string]string{
		"trialing":           model.StatusTrialing,
		"active":             model.StatusActive,
		"canceled":           model.StatusCanceled,
		"unpaid":             model.StatusCanceled,
		"incomplete_expired": model.StatusCanceled,
		"incomplete":         model.StatusIncomplete,
		"past_due":           model.StatusPastDue,
		"paused":             model.StatusPastDue,
		"":                   model.StatusPastDue,
	}
	for in, want := range cases {
		if got := MapStripeStatus(in); got != want {
			t.Errorf("MapStripeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
