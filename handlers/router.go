package handlers

import (
	"mindmap-share/config"
	"mindmap-share/core"
	"mindmap-share/handlers/api/batch"
	"mindmap-share/handlers/api/documents"
	"mindmap-share/handlers/web"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type healthResponse struct {
	Status string `json:"status"`
}

// NewRouter wires the pages, the share API and the embedded assets.
func NewRouter(documentStore core.DocumentStore, cfg *config.Config, log logrus.FieldLogger) http.Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.Server.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           int(cfg.CORS.MaxAge.Seconds()),
	}))

	r.Get("/", web.HandleEditor(log))
	r.Get("/view/{token}", web.HandleView(documentStore, log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, healthResponse{Status: "ok"})
	})

	r.Route("/api/share", func(r chi.Router) {
		r.Post("/", documents.HandleCreate(documentStore, documents.Options{
			PublicURL:         cfg.Server.PublicURL,
			TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
			MaxBodyBytes:      cfg.Server.MaxBodyBytes,
			Log:               log,
		}))
		r.Post("/batch-get", batch.HandleBatchGet(documentStore, batch.Options{
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
		}))
		r.Get("/{token}", documents.HandleGet(documentStore))
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))
	r.Get("/manifest.json", web.HandleFile("manifest.json", "application/manifest+json", log))
	r.Get("/sw.js", web.HandleFile("sw.js", "application/javascript", log))
	r.Get("/favicon.ico", web.HandleFile("icons/favicon.svg", "image/svg+xml", log))

	return r
}
