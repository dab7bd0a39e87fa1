package model

import "time"

// Subscription status values. Stripe reports a wider set; webhook and
// checkout sync map everything into these five (see access.MapStripeStatus).
const (
	StatusActive     = "active"
	StatusTrialing   = "trialing"
	StatusPastDue    = "past_due"
	StatusCanceled   = "canceled"
	StatusIncomplete = "incomplete"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile holds the business details for a user. One profile per user.
type Profile struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	BusinessName string    `json:"business_name"`
	ContactEmail string    `json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Storefront is the public page for a business. One per profile, created
// lazily the first time the owner opens the editor. IsActive controls the
// explore listing only; the slug URL stays reachable either way.
type Storefront struct {
	ID             int64     `json:"id"`
	ProfileID      int64     `json:"profile_id"`
	Slug           string    `json:"slug"`
	Headline       string    `json:"headline"`
	Description    string    `json:"description"`
	ContactDetails string    `json:"contact_details"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Plan is the local record of a billing tier. Stripe remains the source of
// truth for money; plans exist so the pricing page and checkout can resolve
// a code to a Stripe price without a network call.
type Plan struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	StripePriceID string    `json:"stripe_price_id"`
	IsActive      bool      `json:"is_active"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
}

type Subscription struct {
	ID                   int64      `json:"id"`
	ProfileID            int64      `json:"profile_id"`
	PlanID               int64      `json:"plan_id"`
	Status               string     `json:"status"`
	StripeCustomerID     string     `json:"stripe_customer_id"`
	StripeSubscriptionID string     `json:"stripe_subscription_id"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// IsPaid reports whether this row tracks a real Stripe subscription, as
// opposed to a locally created trial.
func (s *Subscription) IsPaid() bool {
	return s.StripeSubscriptionID != ""
}

// StudioAccess links a profile to its identity in the external Studio app
// and records when the owner last followed the Studio link.
type StudioAccess struct {
	ID             int64      `json:"id"`
	ProfileID      int64      `json:"profile_id"`
	PrincipalID    string     `json:"principal_id"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CardLink is a shareable viewer link for a card minted in Studio.
type CardLink struct {
	ID             int64     `json:"id"`
	Token          string    `json:"token"`
	NFTID          string    `json:"nft_id"`
	OpenURL        string    `json:"open_url"`
	ImageURL       string    `json:"image_url"`
	RecipientEmail string    `json:"recipient_email"`
	CreatedAt      time.Time `json:"created_at"`
}
