package stripe

import (
	"fmt"
	"strconv"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checksession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	// Fallback price IDs used when a plan row has no stripe_price_id.
	BasicPriceID string
	ProPriceID   string
	SuccessURL   string
	CancelURL    string
}

type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	stripe.Key = cfg.SecretKey
	return &Client{cfg: cfg}
}

// CreateCustomer creates a Stripe customer and returns the customer ID.
func (c *Client) CreateCustomer(email string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession starts a subscription-mode checkout for the given
// price and returns the hosted page URL. The profile ID rides along as both
// client_reference_id and metadata so the success handler and the webhook
// can link the session back to a local profile.
func (c *Client) CreateCheckoutSession(customerEmail, priceID string, profileID int64, planCode string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID:   stripe.String(strconv.FormatInt(profileID, 10)),
		AllowPromotionCodes: stripe.Bool(true),
		SuccessURL:          stripe.String(c.cfg.SuccessURL),
		CancelURL:           stripe.String(c.cfg.CancelURL),
	}
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}
	params.AddMetadata("profile_id", strconv.FormatInt(profileID, 10))
	params.AddMetadata("plan_code", planCode)

	sess, err := checksession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// GetCheckoutSession retrieves a checkout session by ID.
func (c *Client) GetCheckoutSession(sessionID string) (*stripe.CheckoutSession, error) {
	sess, err := checksession.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	return sess, nil
}

// GetSubscription retrieves a subscription by ID.
func (c *Client) GetSubscription(subID string) (*stripe.Subscription, error) {
	sub, err := subscription.Get(subID, nil)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// CreateBillingPortalSession creates a billing portal session and returns
// the URL.
func (c *Client) CreateBillingPortalSession(customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// PriceIDForPlan resolves the Stripe price for a plan code. The plan row's
// own price ID wins; otherwise the configured fallback for basic/pro.
// Returns "" when nothing is configured.
func (c *Client) PriceIDForPlan(planCode, planPriceID string) string {
	if planPriceID != "" {
		return planPriceID
	}
	switch planCode {
	case "basic":
		return c.cfg.BasicPriceID
	case "pro":
		return c.cfg.ProPriceID
	}
	return ""
}

// ConstructWebhookEvent verifies the signature and returns the parsed event.
func (c *Client) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.cfg.WebhookSecret)
}

// PeriodEnd extracts the current period end from a subscription, or nil.
// Stripe reports the period on the subscription items.
func PeriodEnd(sub *stripe.Subscription) *time.Time {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	ts := sub.Items.Data[0].CurrentPeriodEnd
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
