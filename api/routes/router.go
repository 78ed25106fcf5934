package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nhc-it/assetlend-backend/api/controllers"
	"github.com/nhc-it/assetlend-backend/api/middleware"
	"github.com/nhc-it/assetlend-backend/internal/assets"
	"github.com/nhc-it/assetlend-backend/internal/maintenance"
	"github.com/nhc-it/assetlend-backend/internal/requests"
	"github.com/nhc-it/assetlend-backend/internal/returns"
	"github.com/nhc-it/assetlend-backend/internal/workflow"
	"github.com/nhc-it/assetlend-backend/pkg/config"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
	pkgredis "github.com/nhc-it/assetlend-backend/pkg/redis"
)

// Dependencies are the collaborators the HTTP surface is wired to. Nil services
// answer with an internal error instead of panicking.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	Metrics     prometheus.Gatherer

	Assets      assets.Service
	Requests    requests.Service
	Workflow    workflow.Service
	Returns     returns.Service
	Maintenance maintenance.Service
	History     controllers.HistoryReader
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}, logg))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Idempotency, cfg.Idempotency.TTL, logg))

		r.Get("/assets/available", controllers.FindAvailableAssets(deps.Assets, logg))

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", controllers.SubmitRequest(deps.Requests, logg))
			r.Get("/mine", controllers.MyRequests(deps.Requests, logg))
			r.Get("/{id}", controllers.GetRequest(deps.Requests, logg))
			r.Post("/{id}/cancel", controllers.CancelRequest(deps.Requests, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))

			r.Route("/requests", func(r chi.Router) {
				r.Get("/", controllers.RequestQueue(deps.Requests, logg))
				r.Post("/{id}/assign", controllers.AssignAsset(deps.Workflow, logg))
				r.Post("/{id}/approve", controllers.ApproveRequest(deps.Workflow, logg))
				r.Post("/{id}/reject", controllers.RejectRequest(deps.Workflow, logg))
				r.Post("/{id}/return", controllers.RecordReturn(deps.Returns, logg))
			})

			r.Route("/returns", func(r chi.Router) {
				r.Get("/", controllers.ListReturns(deps.Returns, logg))
				r.Get("/{id}", controllers.GetReturn(deps.Returns, logg))
				r.Post("/{id}/regrade", controllers.RegradeReturn(deps.Returns, logg))
			})

			r.Route("/assets", func(r chi.Router) {
				r.Post("/", controllers.RegisterAsset(deps.Assets, logg))
				r.Get("/", controllers.ListAssets(deps.Assets, logg))
				r.Get("/{id}", controllers.GetAsset(deps.Assets, logg))
				r.Patch("/{id}", controllers.UpdateAsset(deps.Assets, logg))
				r.Post("/{id}/retire", controllers.RetireAsset(deps.Assets, logg))
				r.Post("/{id}/maintenance", controllers.StartMaintenance(deps.Maintenance, logg))
				r.Get("/{id}/maintenance", controllers.AssetMaintenance(deps.Maintenance, logg))
			})

			r.Get("/maintenance/{id}", controllers.GetMaintenance(deps.Maintenance, logg))
			r.Post("/maintenance/{id}/complete", controllers.CompleteMaintenance(deps.Maintenance, logg))
			r.Get("/history/{aggregateType}/{id}", controllers.LifecycleHistory(deps.History, logg))
		})
	})

	return r
}
