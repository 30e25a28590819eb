package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unclebandit/creditsim/internal/metrics"
)

// NewRouter wires the read API.
func NewRouter(stats StatsReader, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	tables := &TableHandler{Stats: stats, Logger: logger}
	campaigns := &CampaignHandler{Stats: stats, Logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(instrument(m))

	r.Get("/tables", tables.ListTables)
	r.Get("/tables/{name}", tables.GetTable)
	r.Get("/campaigns/{id}", campaigns.GetCampaignHandlerWithStats)
	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	return r
}

// instrument counts requests by route pattern and status code.
func instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.HTTPRequest(route, strconv.Itoa(status))
		})
	}
}
