package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	srv *http.Server
}

func New(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Deps - сервисы, на которых работает API. Metrics может быть nil.
type Deps struct {
	Log       *slog.Logger
	Accounts  AccountService
	Materials MaterialService
	Ledger    LedgerService
	Tokens    TokenVerifier
	Metrics   Metrics
}

func NewRouter(d Deps) http.Handler {
	h := &handlers{
		log:       d.Log,
		accounts:  d.Accounts,
		materials: d.Materials,
		ledger:    d.Ledger,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.StripSlashes,
		requestLogger(d.Log, d.Metrics),
		middleware.Recoverer,
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/registro", h.register)
		r.Post("/login", h.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticate(d.Tokens))

		r.Route("/materiais", func(r chi.Router) {
			r.Get("/", h.listMaterials)
			r.Post("/", h.createMaterial)
			r.Get("/{id}", h.getMaterial)
			r.Put("/{id}", h.updateMaterial)
			r.Delete("/{id}", h.deleteMaterial)
		})

		r.Route("/estoque", func(r chi.Router) {
			r.Post("/entrada", h.recordEntries)
			r.Post("/entrada/import", h.importEntries)
			r.Post("/saida", h.recordExits)
			r.Get("/saldo", h.balances)
			r.Get("/saldo/export", h.exportBalances)
			r.Get("/movimentos", h.movements)
		})
	})

	return r
}
