package http

import (
	"log/slog"
	"net/http"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/handler/http/middleware"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	payrollHandler PayrollHandler,
	severanceHandler SeveranceHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
		// Event streams stay open for minutes; log them on connect only.
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/api/v1/payroll/runs/events" && respStatus == http.StatusOK
		},
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1/payroll", func(r chi.Router) {
		// SSE authenticates with a query token
		r.Get("/runs/events", eventsHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Post("/runs/events/token", eventsHandler.Token)

			r.Route("/runs", func(r chi.Router) {
				r.Post("/", payrollHandler.CreateRun)
				r.Get("/", payrollHandler.ListRuns)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetRun)
					r.Post("/calculate", payrollHandler.CalculateRun)
					r.Post("/reset", payrollHandler.ResetRun)

					r.Route("/items", func(r chi.Router) {
						r.Get("/", payrollHandler.ListItems)
						r.Get("/{employeeID}", payrollHandler.GetItem)
						r.Patch("/{employeeID}", payrollHandler.AdjustItem)
						r.Get("/{employeeID}/payslip", payrollHandler.Payslip)
					})
				})
			})

			r.Get("/preview/{employeeID}", payrollHandler.PreviewEmployee)
			r.Post("/severance", severanceHandler.Calculate)
		})
	})

	return r
}
