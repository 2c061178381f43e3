package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cnosuke/sheet-gallery/gallery"
	"github.com/cnosuke/sheet-gallery/views"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// PageLoader produces a fresh gallery page per call.
type PageLoader interface {
	Load(ctx context.Context) *gallery.Page
}

type handlers struct {
	loader PageLoader
	tmpl   *views.Template
	title  string
}

// NewRouter - Routes for the gallery page, its JSON view and a health check
func NewRouter(loader PageLoader, tmpl *views.Template, title string) http.Handler {
	h := &handlers{loader: loader, tmpl: tmpl, title: title}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", h.galleryPage)
	r.Get("/gallery.json", h.galleryJSON)
	r.Get("/healthz", h.health)
	return r
}

func (h *handlers) galleryPage(w http.ResponseWriter, r *http.Request) {
	page := h.loader.Load(r.Context())
	h.tmpl.ExecuteHTTP(w, &views.GalleryData{Title: h.title, Page: page})
}

func (h *handlers) galleryJSON(w http.ResponseWriter, r *http.Request) {
	page := h.loader.Load(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(page); err != nil {
		zap.S().Errorw("failed to encode page", "error", err)
	}
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.S().Infow("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
