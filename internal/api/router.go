package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "student-insights/docs"
	"student-insights/internal/api/handler"
	"student-insights/internal/infrastructure"
	"student-insights/pkg/router"
)

// NewRouter wires every endpoint onto a router.
func NewRouter(h *handler.Handler) *router.Router {
	r := router.New(requestContext)

	r.Group(func(v1 *router.Router) {
		v1.GET("/api/v1/analyses", h.ListAnalyses)
		v1.GET("/api/v1/analyses/{name}", h.RunAnalysis)
		v1.GET("/api/v1/analyses/{name}/export", h.ExportAnalysis)
		v1.GET("/api/v1/analyses/{name}/chart.png", h.ChartAnalysis)

		v1.GET("/api/v1/dataset", h.GetDataset)
		v1.GET("/api/v1/dataset/records", h.GetRecords)
		v1.POST("/api/v1/dataset/reload", h.ReloadDataset)

		v1.GET("/api/v1/runs", h.ListRuns)
		v1.GET("/api/v1/runs/{id}", h.GetRun)
	}, render.SetContentType(render.ContentTypeJSON))

	r.GET("/healthz", h.Health)
	r.Handle("/metrics", infrastructure.MetricsHandler())
	r.Handle("/swagger/*", httpSwagger.WrapHandler)
	return r
}

// requestContext carries the chi request id into the logging context.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = infrastructure.WithRequestID(ctx, id)
		} else {
			ctx = infrastructure.EnsureRequestID(ctx)
		}
		w.Header().Set("X-Request-ID", infrastructure.GetRequestID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

