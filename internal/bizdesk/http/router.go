package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/service"
	"github.com/aussiebroadwan/bizdesk/pkg/httpx"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers. Set the service fields
// before calling ApplyRoutes.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        Pinger
	limits       httpx.Profiles

	Cookie            CookieConfig
	ExposeInviteLinks bool

	Sessions      *service.SessionService
	Registration  *service.RegistrationService
	Invitations   *service.InvitationService
	Organizations *service.OrganizationService
	Subscriptions *service.SubscriptionService
	Catalog       *service.CatalogService
	Bookings      *service.BookingService
}

func NewRouter(buildVersion string, st Pinger, limits httpx.Profiles, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slogx.Discard()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		limits:       limits,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerInvitations()
	r.registerOrganization()
	r.registerCatalog()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			bizdesk API
//	@version		0.1.0
//	@description	Multi-tenant business management: organizations, team invitations, clients, offerings, bookings and a mocked subscription.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/bizdesk
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							header
//	@name						Cookie
//	@description				Session cookie set by register, register-with-invite and login. Format: "bizdesk_session={token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured resolves the session, then rate limits per user, then calls h
// with the principal.
func (r *Router) secured(h PrincipalHandler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(withPrincipal(h),
		authenticate(r.Sessions, r.Cookie),
		httpx.RateLimitBySubject(limit, r.limits.ClientIP()),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountHandler{
		Registration: r.Registration,
		Sessions:     r.Sessions,
		Cookie:       r.Cookie,
	}

	// Credential endpoints: strict, keyed by IP and the submitted email.
	r.Mux.Handle("POST /v1/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, r.limits.ClientIP(), "email"),
		),
	)
	r.Mux.Handle("POST /v1/register-with-invite",
		httpx.Chain(http.HandlerFunc(h.HandleRegisterWithInvite),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, r.limits.ClientIP(), "email"),
		),
	)
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, r.limits.ClientIP(), "email"),
		),
	)

	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(r.limits.Moderate, r.limits.ClientIP()),
		),
	)
	r.Mux.Handle("GET /v1/me", r.secured(h.HandleMe, r.limits.Lenient))
}

func (r *Router) registerInvitations() {
	h := &InvitationHandler{
		Invitations: r.Invitations,
		ExposeLinks: r.ExposeInviteLinks,
	}

	r.Mux.Handle("POST /v1/invitations", r.secured(h.HandleCreate, r.limits.Moderate))
	r.Mux.Handle("GET /v1/invitations", r.secured(h.HandleList, r.limits.Lenient))

	// Public and token-guessable: strict by IP.
	r.Mux.Handle("GET /v1/invitations/verify/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(r.limits.Strict, r.limits.ClientIP()),
		),
	)
}

func (r *Router) registerOrganization() {
	h := &OrganizationHandler{
		Organizations: r.Organizations,
		Subscriptions: r.Subscriptions,
	}

	r.Mux.Handle("GET /v1/organization", r.secured(h.HandleGet, r.limits.Lenient))
	r.Mux.Handle("PATCH /v1/organization", r.secured(h.HandleUpdate, r.limits.Moderate))
	r.Mux.Handle("GET /v1/organization/members", r.secured(h.HandleMembers, r.limits.Lenient))

	r.Mux.Handle("GET /v1/subscription", r.secured(h.HandleGetSubscription, r.limits.Lenient))
	r.Mux.Handle("PUT /v1/subscription/plan", r.secured(h.HandleChangePlan, r.limits.Moderate))
}

func (r *Router) registerCatalog() {
	h := &CatalogHandler{
		Catalog:  r.Catalog,
		Bookings: r.Bookings,
	}

	r.Mux.Handle("POST /v1/clients", r.secured(h.HandleCreateClient, r.limits.Moderate))
	r.Mux.Handle("GET /v1/clients", r.secured(h.HandleListClients, r.limits.Lenient))
	r.Mux.Handle("GET /v1/clients/{id}", r.secured(h.HandleGetClient, r.limits.Lenient))

	r.Mux.Handle("POST /v1/offerings", r.secured(h.HandleCreateOffering, r.limits.Moderate))
	r.Mux.Handle("GET /v1/offerings", r.secured(h.HandleListOfferings, r.limits.Lenient))
	r.Mux.Handle("GET /v1/offerings/{id}", r.secured(h.HandleGetOffering, r.limits.Lenient))

	r.Mux.Handle("POST /v1/bookings", r.secured(h.HandleCreateBooking, r.limits.Moderate))
	r.Mux.Handle("GET /v1/bookings", r.secured(h.HandleListBookings, r.limits.Lenient))
	r.Mux.Handle("GET /v1/bookings/{id}", r.secured(h.HandleGetBooking, r.limits.Lenient))
	r.Mux.Handle("PATCH /v1/bookings/{id}/status", r.secured(h.HandleUpdateBookingStatus, r.limits.Moderate))
}

func (r *Router) registerSystem() {
	// Monitoring may poll often.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Public, r.limits.ClientIP()),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limits.Public, r.limits.ClientIP()),
		),
	)
}
