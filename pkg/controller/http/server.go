package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/usecase"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
)

const (
	// AjaxPath is the endpoint the client script posts dismissals to
	AjaxPath = "/wp-admin/admin-ajax.php"

	scriptPath = "/assets/dismiss-notice.js"
)

type Server struct {
	router        *chi.Mux
	uc            *usecase.UseCases
	resolver      ActorResolver
	registry      *model.NoticeRegistry
	title         string
	ajaxURL       string
	enableMetrics bool
}

type Options func(*Server)

// WithActorResolver sets how the current user is taken from a request.
// Without one every request is anonymous.
func WithActorResolver(resolver ActorResolver) Options {
	return func(s *Server) {
		s.resolver = resolver
	}
}

func WithRegistry(registry *model.NoticeRegistry) Options {
	return func(s *Server) {
		s.registry = registry
	}
}

func WithTitle(title string) Options {
	return func(s *Server) {
		s.title = title
	}
}

// WithAjaxURL overrides the URL the client script reports dismissals to,
// for deployments behind a path prefix.
func WithAjaxURL(url string) Options {
	return func(s *Server) {
		s.ajaxURL = url
	}
}

func WithMetrics(enabled bool) Options {
	return func(s *Server) {
		s.enableMetrics = enabled
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:  r,
		uc:      uc,
		title:   "Dashboard",
		ajaxURL: AjaxPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = uc.Registry()
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(actorMiddleware(s.resolver))

	ajax := ajaxHandler(map[string]http.HandlerFunc{
		usecase.DismissNoticeAction: dismissNoticeHandler(uc.Notice),
	})
	r.Post(AjaxPath, ajax)
	r.Post("/ajax", ajax)

	r.Get(scriptPath, scriptHandler)
	r.Get("/admin", adminHandler(uc.Notice, s.registry, s.title, s.ajaxURL))
	r.Get("/api/notices/dismissed", dismissedHandler(uc.Notice))

	if s.enableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
