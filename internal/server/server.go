package server

import (
	"database/sql"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/mintkit/hub/internal/email"
	"github.com/mintkit/hub/internal/handler"
	"github.com/mintkit/hub/internal/middleware"
	"github.com/mintkit/hub/internal/store"
	hubstripe "github.com/mintkit/hub/internal/stripe"
)

// Card link creation is abuse-prone (it sends email and mints public
// URLs), so it gets a tighter window than the login endpoints.
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
	cardRateLimit  = 10
	cardRateWindow = 5 * time.Minute
)

type Server struct {
	db                *sql.DB
	userStore         *store.UserStore
	sessionStore      *store.SessionStore
	profileStore      *store.ProfileStore
	storefrontStore   *store.StorefrontStore
	planStore         *store.PlanStore
	subscriptionStore *store.SubscriptionStore
	studioAccessStore *store.StudioAccessStore
	cardLinkStore     *store.CardLinkStore

	authH       *handler.AuthHandler
	dashboardH  *handler.DashboardHandler
	profileH    *handler.ProfileHandler
	storefrontH *handler.StorefrontHandler
	trialH      *handler.TrialHandler
	checkoutH   *handler.CheckoutHandler
	webhookH    *handler.WebhookHandler
	studioH     *handler.StudioHandler
	cardLinkH   *handler.CardLinkHandler
	marketingH  *handler.MarketingHandler

	stripeClient *hubstripe.Client
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

type Config struct {
	Stripe           hubstripe.Config
	BaseURL          string
	StudioURL        string
	StudioAPIKey     string
	AllowedCardHosts []string
	EmailClient      *email.Client
	TemplatesDir     string
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	profileStore := store.NewProfileStore(db)
	storefrontStore := store.NewStorefrontStore(db)
	planStore := store.NewPlanStore(db)
	subscriptionStore := store.NewSubscriptionStore(db)
	studioAccessStore := store.NewStudioAccessStore(db)
	cardLinkStore := store.NewCardLinkStore(db)

	var stripeClient *hubstripe.Client
	if cfg.Stripe.SecretKey != "" {
		stripeClient = hubstripe.NewClient(cfg.Stripe)
	}

	// Per-page template sets to avoid {{define "content"}} collisions
	tmplDir := cfg.TemplatesDir
	if tmplDir == "" {
		tmplDir = "web/templates"
	}
	layoutFile := tmplDir + "/layout.html"
	templates := make(map[string]*template.Template)
	pages := []string{
		"index.html", "pricing.html", "explore.html",
		"login.html", "register.html",
		"dashboard.html", "edit_profile.html",
		"storefront_edit.html", "storefront_detail.html",
		"card_viewer.html",
	}
	for _, page := range pages {
		templates[page] = template.Must(template.ParseFiles(layoutFile, tmplDir+"/"+page))
	}
	renderer := handler.NewRenderer(templates, cfg.BaseURL, logger.With("component", "render"))

	var checkoutH *handler.CheckoutHandler
	var webhookH *handler.WebhookHandler
	if stripeClient != nil {
		checkoutH = handler.NewCheckoutHandler(stripeClient, profileStore, planStore, subscriptionStore, cfg.EmailClient, cfg.BaseURL, logger.With("component", "checkout"))
		webhookH = handler.NewWebhookHandler(stripeClient, planStore, subscriptionStore, logger.With("component", "webhook"))
	}

	return &Server{
		db:                db,
		userStore:         userStore,
		sessionStore:      sessionStore,
		profileStore:      profileStore,
		storefrontStore:   storefrontStore,
		planStore:         planStore,
		subscriptionStore: subscriptionStore,
		studioAccessStore: studioAccessStore,
		cardLinkStore:     cardLinkStore,

		authH:       handler.NewAuthHandler(userStore, profileStore, sessionStore, cfg.EmailClient, renderer, logger.With("component", "auth")),
		dashboardH:  handler.NewDashboardHandler(profileStore, storefrontStore, subscriptionStore, planStore, renderer, logger.With("component", "dashboard")),
		profileH:    handler.NewProfileHandler(profileStore, renderer, logger.With("component", "profile")),
		storefrontH: handler.NewStorefrontHandler(profileStore, storefrontStore, renderer, logger.With("component", "storefront")),
		trialH:      handler.NewTrialHandler(subscriptionStore, planStore, logger.With("component", "trial")),
		checkoutH:   checkoutH,
		webhookH:    webhookH,
		studioH:     handler.NewStudioHandler(subscriptionStore, studioAccessStore, cfg.StudioURL, logger.With("component", "studio")),
		cardLinkH:   handler.NewCardLinkHandler(cardLinkStore, cfg.EmailClient, renderer, cfg.StudioAPIKey, cfg.AllowedCardHosts, logger.With("component", "cardlink")),
		marketingH:  handler.NewMarketingHandler(sessionStore, profileStore, storefrontStore, planStore, subscriptionStore, renderer, logger.With("component", "marketing")),

		stripeClient: stripeClient,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public pages
	mux.HandleFunc("GET /{$}", s.marketingH.Home)
	mux.HandleFunc("GET /pricing", s.marketingH.Pricing)
	mux.HandleFunc("GET /explore", s.storefrontH.Explore)
	mux.HandleFunc("GET /s/{slug}", s.storefrontH.Detail)
	mux.HandleFunc("GET /cards/{token}", s.cardLinkH.View)
	mux.HandleFunc("GET /health", s.marketingH.Health)

	// Auth (public, POSTs rate-limited)
	authLimit := middleware.RateLimitByIP(s.rateLimiter, authRateLimit, authRateWindow)
	mux.HandleFunc("GET /register", s.authH.RegisterPage)
	mux.Handle("POST /register", authLimit(http.HandlerFunc(s.authH.Register)))
	mux.HandleFunc("GET /login", s.authH.LoginPage)
	mux.Handle("POST /login", authLimit(http.HandlerFunc(s.authH.Login)))

	// Stripe webhook (public, signature-verified)
	if s.webhookH != nil {
		mux.HandleFunc("POST /webhooks/stripe", s.webhookH.HandleStripeWebhook)
	}

	// Studio card link API (public, rate-limited)
	cardLimit := middleware.RateLimitByIP(s.rateLimiter, cardRateLimit, cardRateWindow)
	mux.Handle("POST /api/studio/cards", cardLimit(http.HandlerFunc(s.cardLinkH.Create)))

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))

	// Protected routes
	authMw := middleware.RequireAuth(s.sessionStore, s.userStore, s.profileStore)
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authMw(h))
	}
	protected("POST /logout", s.authH.Logout)
	protected("GET /dashboard", s.dashboardH.Dashboard)
	protected("GET /profile", s.profileH.EditPage)
	protected("POST /profile", s.profileH.Update)
	protected("GET /storefront", s.storefrontH.EditorPage)
	protected("POST /storefront", s.storefrontH.Update)
	protected("POST /storefront/publish", s.storefrontH.TogglePublish)
	protected("POST /trial/start", s.trialH.Start)
	protected("GET /studio", s.studioH.Enter)
	protected("POST /studio/principal", s.studioH.SetPrincipal)

	if s.checkoutH != nil {
		protected("POST /checkout/{plan}", s.checkoutH.Start)
		protected("GET /checkout/success", s.checkoutH.Success)
		protected("GET /checkout/cancel", s.checkoutH.Cancel)
		protected("POST /billing-portal", s.checkoutH.BillingPortal)
	}

	return middleware.RequestLogger(s.logger)(mux)
}
