package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"store-generator/internal/application"
	"store-generator/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// DraftService is the draft workflow used by the wizard.
type DraftService interface {
	Generate(ctx context.Context, input application.GenerateInput) (*domain.Draft, error)
	Get(ctx context.Context, userID, draftID string) (*domain.Draft, error)
	Patch(ctx context.Context, userID, draftID string, patch domain.StoreDataPatch) (*domain.Draft, error)
	ToggleImage(ctx context.Context, userID, draftID, imageID string) (*domain.Draft, error)
	RequestAIVariant(ctx context.Context, userID, draftID, style string) (*domain.CuratedImage, error)
	Preview(ctx context.Context, userID, draftID string, kind application.PreviewKind) (string, error)
	Delete(ctx context.Context, userID, draftID string) error
}

// Exporter publishes a store snapshot.
type Exporter interface {
	Export(ctx context.Context, req domain.ExportRequest) (domain.ExportResult, error)
}

// HistoryService manages saved configurations and export records.
type HistoryService interface {
	List(ctx context.Context, userID string) ([]*domain.SavedConfiguration, error)
	Get(ctx context.Context, userID, id string) (*domain.SavedConfiguration, error)
	Delete(ctx context.Context, userID, id string) error
	Reopen(ctx context.Context, userID, id string) (*domain.Draft, error)
	Exports(ctx context.Context, userID string) ([]*domain.ExportRecord, error)
}

// ConnectionService runs the Shopify OAuth flow.
type ConnectionService interface {
	StartAuthorization(ctx context.Context, userID, rawShop, returnURL string) (string, error)
	HandleCallback(ctx context.Context, callback *url.URL) (*application.CallbackResult, error)
	List(ctx context.Context, userID string) ([]*domain.ExternalConnection, error)
	Disconnect(ctx context.Context, userID, rawShop string) error
	VerifyWebhook(r *http.Request) bool
}

// WebhookDispatcher routes verified Shopify webhooks.
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, event *domain.WebhookEvent) (bool, error)
}

// BillingService exposes the user's subscription.
type BillingService interface {
	Checkout(ctx context.Context, user domain.UserRef, plan, period string) (string, error)
	Status(ctx context.Context, user domain.UserRef) (*domain.SubscriptionStatus, error)
	Portal(ctx context.Context, user domain.UserRef) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// DeploymentService manages internal stores and serves them publicly.
type DeploymentService interface {
	List(ctx context.Context, userID string) ([]*domain.DeployedStore, error)
	Get(ctx context.Context, userID, id string) (*domain.DeployedStore, error)
	UpdateData(ctx context.Context, userID, id string, patch domain.StoreDataPatch) (*domain.DeployedStore, error)
	SetStatus(ctx context.Context, userID, id, status string) (*domain.DeployedStore, error)
	SetPayment(ctx context.Context, userID, id string, input application.PaymentInput) (*domain.DeployedStore, error)
	Delete(ctx context.Context, userID, id string) error
	PublicStore(ctx context.Context, subdomain string) (*domain.DeployedStore, error)
	Visit(ctx context.Context, subdomain string) (string, error)
	Checkout(ctx context.Context, subdomain string) (string, error)
}

// Services groups everything the router serves. Nil services leave their routes out.
type Services struct {
	Drafts      DraftService
	Exports     Exporter
	History     HistoryService
	Connections ConnectionService
	Webhooks    WebhookDispatcher
	Billing     BillingService
	Gate        application.ExportGate
	Deployments DeploymentService
	Metrics     http.Handler
	SwaggerFile string
	CORSOrigins []string
}

// Handler holds the HTTP handlers of the service.
type Handler struct {
	svc    Services
	logger zerolog.Logger
}

// NewRouter builds the HTTP router with middleware and every route.
func NewRouter(svc Services, logger zerolog.Logger) http.Handler {
	h := &Handler{svc: svc, logger: logger}
	origins := svc.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", HeaderUserID, HeaderUserEmail},
		AllowCredentials: true,
	}))
	r.Use(UserMiddleware())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if svc.Metrics != nil {
		r.Handle("/metrics", svc.Metrics)
	}
	if svc.SwaggerFile != "" {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
		r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, r, svc.SwaggerFile)
		})
	}

	// OAuth and webhooks
	if svc.Connections != nil {
		r.With(RequireUser(logger)).Get("/auth/shopify", h.startAuthorization)
		r.Get("/auth/callback", h.authorizationCallback)
		r.Post("/webhooks/shopify", h.shopifyWebhook)
	}
	if svc.Billing != nil {
		r.Post("/webhooks/stripe", h.stripeWebhook)
	}

	// Public storefront
	if svc.Deployments != nil {
		r.Get("/s/{subdomain}", h.storefrontRedirect)
		r.Get("/s/{subdomain}/", h.storefront)
		r.Post("/s/{subdomain}/checkout", h.storefrontCheckout)
		r.Get("/api/public/stores/{subdomain}", h.publicStore)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireUser(logger))

		if svc.Drafts != nil {
			r.Post("/drafts", h.generateDraft)
			r.Route("/drafts/{draftID}", func(r chi.Router) {
				r.Get("/", h.getDraft)
				r.Patch("/", h.patchDraft)
				r.Delete("/", h.deleteDraft)
				r.Post("/images/{imageID}/toggle", h.toggleImage)
				r.Post("/images/variants", h.requestVariant)
				r.Get("/preview", h.previewDraft)
				if svc.Exports != nil {
					r.Post("/export", h.exportDraft)
				}
			})
		}

		if svc.History != nil {
			r.Get("/history", h.listHistory)
			r.Get("/history/{configID}", h.getHistory)
			r.Delete("/history/{configID}", h.deleteHistory)
			r.Post("/history/{configID}/reopen", h.reopenHistory)
			r.Get("/exports", h.listExports)
		}

		if svc.Connections != nil {
			r.Get("/connections", h.listConnections)
			r.Delete("/connections/{shop}", h.disconnect)
		}

		if svc.Billing != nil {
			r.Post("/billing/checkout", h.billingCheckout)
			r.Get("/billing/status", h.billingStatus)
			r.Post("/billing/portal", h.billingPortal)
		}
		if svc.Gate != nil {
			r.Get("/billing/gate", h.gateDecision)
		}

		if svc.Deployments != nil {
			r.Get("/stores", h.listStores)
			r.Route("/stores/{storeID}", func(r chi.Router) {
				r.Get("/", h.getStore)
				r.Patch("/data", h.updateStoreData)
				r.Put("/status", h.setStoreStatus)
				r.Put("/payment", h.setStorePayment)
				r.Delete("/", h.deleteStore)
			})
		}
	})

	return r
}

func userID(r *http.Request) string {
	return domain.GetUserIDFromContext(r.Context())
}
