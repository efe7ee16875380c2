package router

import (
	"database/sql"
	"net/http"

	mem "foster-tracker/internal/adapters/storage/memory"
	pg "foster-tracker/internal/adapters/storage/postgres"
	"foster-tracker/internal/adapters/storage/sqlite"
	_ "foster-tracker/internal/docs"
	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/domain/filters"
	"foster-tracker/internal/domain/listing"
	"foster-tracker/internal/domain/visibility"
	"foster-tracker/internal/middleware"
	"foster-tracker/internal/platform/logger"
	"foster-tracker/internal/platform/metrics"
	"foster-tracker/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene DB se usa el backend SQL indicado por Dialect
	// ("postgres" por defecto, "sqlite"). Si no, in-memory.
	DB      *sql.DB
	Dialect string

	// Opcional: repos ya construidos; tienen prioridad sobre DB.
	Animals animals.Repository
	Groups  animals.GroupRepository

	Logger  logger.Logger
	Metrics *metrics.Metrics
	Limits  filters.Limits

	// Opcional: estado de conectividad del record store.
	Connectivity listing.Connectivity
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	lim := opts.Limits
	if lim.DefaultPageSize <= 0 {
		lim = filters.DefaultLimits
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		animalRepo animals.Repository
		groupRepo  animals.GroupRepository
	)

	switch {
	case opts.Animals != nil && opts.Groups != nil:
		animalRepo = opts.Animals
		groupRepo = opts.Groups
	case opts.DB != nil && opts.Dialect == "sqlite":
		animalRepo = sqlite.NewAnimalsRepo(opts.DB)
		groupRepo = sqlite.NewGroupsRepo(opts.DB)
	case opts.DB != nil:
		animalRepo = pg.NewAnimalsRepo(opts.DB)
		groupRepo = pg.NewGroupsRepo(opts.DB)
	default:
		animalRepo = mem.NewAnimalRepo()
		groupRepo = mem.NewGroupRepo()
	}

	// Services por módulo
	animalsSvc := animals.NewService(animalRepo, groupRepo, log.With(map[string]any{"module": "animals"}))
	visibilitySvc := visibility.NewService(animalRepo, groupRepo, log.With(map[string]any{"module": "visibility"}), m)

	listingOpts := []listing.Option{listing.WithObserver(m)}
	if opts.Connectivity != nil {
		listingOpts = append(listingOpts, listing.WithConnectivity(opts.Connectivity))
	}
	listingSvc := listing.NewService(animalRepo, groupRepo, log.With(map[string]any{"module": "listing"}), listingOpts...)

	// Rutas por módulo. Todas planas: /animals y /groups se reparten entre
	// paquetes.
	animals.RegisterRoutes(r, animalsSvc)
	visibility.RegisterRoutes(r, visibilitySvc)
	listing.RegisterRoutes(r, listingSvc, lim)

	return r
}
