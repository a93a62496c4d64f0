package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/akaza138/sktexcot-accounting-test/internal/http/export"
	"github.com/akaza138/sktexcot-accounting-test/internal/http/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/http/respond"
	"github.com/akaza138/sktexcot-accounting-test/internal/http/transaction"
)

type Options struct {
	AllowedOrigins    []string
	RequestsPerMinute int
	JWTSecret         string
	Timeout           time.Duration
	Production        bool
}

func New(
	opts Options,
	transactionsV1 *transaction.Handler,
	ledgerV1 *ledger.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Use(securityHeaders(opts.Production))

	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if opts.RequestsPerMinute > 0 {
		router.Use(httprate.Limit(
			opts.RequestsPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				respond.WriteProblem(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			}),
		))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(Actor(opts.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))

			r.Route("/sales", transactionsV1.SaleRoutes)
			r.Route("/bills", transactionsV1.BillRoutes)
			r.Route("/payments", transactionsV1.PaymentRoutes)
		})

		r.Route("/ledger", ledgerV1.Routes)

		r.Route("/export", exportV1.Routes)
	})

	return router
}

func securityHeaders(production bool) func(http.Handler) http.Handler {
	sec := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      !production,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sec.Process(w, r); err != nil {
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
