package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pet-adoption/docs"
	"pet-adoption/internal/adapters/notify/logonly"
	mem "pet-adoption/internal/adapters/storage/memory"
	pg "pet-adoption/internal/adapters/storage/postgres"
	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/timeline"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/config"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/platform/ratelimit"
	"pet-adoption/internal/platform/respond"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/ports/notify"
)

type Options struct {
	Config config.Config

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger      logger.Logger     // nil => Nop
	Notifier    notify.Notifier   // nil => log-only
	Metrics     *metrics.Registry // nil => sin /metrics ni instrumentación
	Limiter     ratelimit.Limiter // nil => sin rate limit
	TokenIssuer users.TokenIssuer // nil => /auth/token responde 501

	// HealthChecks extra para /health (p.ej. redis). DB se chequea sola si viene.
	HealthChecks map[string]func(context.Context) error
}

// App expone el handler y el coordinator (main lo usa para el loop de reconciliación).
type App struct {
	Handler   http.Handler
	Adoptions *adoptions.Coordinator
}

func NewRouter(opts Options) http.Handler {
	return New(opts).Handler
}

func New(opts Options) *App {
	cfg := opts.Config
	expose := cfg.IsDevelopment()

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = logonly.New(log)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	checks := make(map[string]func(context.Context) error, len(opts.HealthChecks)+1)
	for name, fn := range opts.HealthChecks {
		checks[name] = fn
	}
	if opts.DB != nil {
		checks["postgres"] = opts.DB.PingContext
	}
	r.Get("/health", healthHandler(checks))

	var (
		petRepo      pets.Repository
		adoptionRepo adoptions.Repository
		timelineRepo timeline.Repository
		userRepo     users.Repository
	)

	if db := opts.DB; db != nil {
		petRepo = pg.NewPetsRepo(db)
		adoptionRepo = pg.NewAdoptionsRepo(db)
		timelineRepo = pg.NewTimelineRepo(db)
		userRepo = pg.NewUsersRepo(db)
	} else {
		petRepo = mem.NewPetRepo()
		adoptionRepo = mem.NewAdoptionRepo()
		timelineRepo = mem.NewTimelineRepo()
		userRepo = mem.NewUserRepo()
	}

	// Services por módulo
	petsSvc := pets.NewService(petRepo)
	timelineSvc := timeline.NewService(timelineRepo)
	usersSvc := users.NewService(userRepo, cfg.AdminEmails...)

	deps := adoptions.Deps{
		Pets:              petsSvc,
		Notifier:          notifier,
		Timeline:          timelineSvc,
		Log:               log,
		SideEffectTimeout: cfg.SideEffectTimeout,
	}
	if opts.Metrics != nil {
		deps.Metrics = opts.Metrics.Adoption
	}
	coord := adoptions.NewCoordinator(adoptions.NewLedger(adoptionRepo), deps)

	var guard func(http.Handler) http.Handler
	if opts.Limiter != nil {
		guard = ratelimit.Middleware(opts.Limiter, log)
	}

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, expose)
	timeline.RegisterRoutes(r, timelineSvc, expose)
	adoptions.RegisterRoutes(r, coord, adoptions.RouteOptions{
		CreateGuard:  guard,
		ExposeErrors: expose,
	})
	users.RegisterRoutes(r, usersSvc, users.RouteOptions{
		Issuer:       opts.TokenIssuer,
		TokenGuard:   guard,
		ExposeErrors: expose,
	})

	if opts.Metrics != nil && cfg.MetricsEnabled {
		r.Handle("/metrics", opts.Metrics.Handler())
	}
	if cfg.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	return &App{Handler: r, Adoptions: coord}
}

func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, check := range checks {
			if err := check(ctx); err != nil {
				respond.Fail(w, http.StatusServiceUnavailable, name+" unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
