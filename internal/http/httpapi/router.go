package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"creationhub/internal/http/handlers"
	"creationhub/internal/infra"
	"creationhub/internal/middleware"
)

// Options configures the router's cross-cutting concerns.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
	RateLimit      int
	RatePeriod     time.Duration
	Logger         *infra.Logger
	FilesDir       string
}

// NewRouter wires all hub endpoints behind the shared middleware stack.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.Locale(opts.DefaultLocale, opts.CountryLookup),
	)
	if opts.Logger != nil {
		r.Use(middleware.Logger(*opts.Logger))
	}

	r.Get("/healthz", app.Health)
	if opts.FilesDir != "" {
		r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(opts.FilesDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))
		// after auth so the limiter can key on the user id
		if opts.RateLimit > 0 {
			per := opts.RatePeriod
			if per <= 0 {
				per = time.Minute
			}
			r.Use(middleware.RateLimit(opts.RateLimit, per))
		}

		r.Route("/video/generate", func(r chi.Router) {
			r.Post("/", app.VideoGenerate)
			r.Get("/", app.VideoStatus)
			r.Delete("/", app.VideoCancel)
		})

		r.Route("/creation-hub", func(r chi.Router) {
			r.Post("/generate", app.HubGenerate)
			r.Post("/edit", app.HubEdit)
			r.Route("/images", func(r chi.Router) {
				r.Get("/", app.GalleryList)
				r.Get("/archive", app.GalleryArchive)
				r.Get("/{image_id}", app.GalleryGet)
				r.Delete("/{image_id}", app.GalleryDelete)
			})
		})

		r.Post("/prompt/enhance", app.PromptEnhance)
		r.Get("/prompt/random", app.PromptRandom)
		r.Get("/prompts", app.PromptLibrary)

		r.Get("/settings", app.SettingsGet)
		r.Put("/settings", app.SettingsUpdate)

		r.Get("/stats/daily", app.StatsDaily)
	})

	return r
}
