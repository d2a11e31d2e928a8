package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router wraps the standard http.ServeMux; handlers check the method themselves.
type Router struct {
	mux        *http.ServeMux
	corsOrigin string
	logger     *zap.Logger
}

func NewRouter(corsOrigin string, logger *zap.Logger) *Router {
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &Router{
		mux:        http.NewServeMux(),
		corsOrigin: corsOrigin,
		logger:     logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// ServeHTTP adds CORS headers to every response and answers preflights with 200.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", r.corsOrigin)
	h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	if r.corsOrigin != "*" {
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
	}
	if req.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	r.mux.ServeHTTP(w, req)
}

func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.Login(w, req)
	})
	r.Handle("/api/auth/check", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.Check(w, req)
	})
	r.Handle("/api/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.Logout(w, req)
	})
}

func (r *Router) RegisterBoardRoutes(h *BoardHandler) {
	r.Handle("/api/blocks", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.Blocks(w, req)
	})

	// /api/blocks/{block}/units | view | export.xlsx
	r.Handle("/api/blocks/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/blocks/")
		block, action, ok := strings.Cut(rest, "/")
		if !ok || block == "" || strings.Contains(action, "/") {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		if req.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		switch action {
		case "units":
			h.Units(w, req, block)
		case "view":
			h.View(w, req, block)
		case "export.xlsx":
			h.Export(w, req, block)
		default:
			writeJSON(w, http.StatusNotFound, Fail("not found"))
		}
	})

	r.Handle("/api/status", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.UpdateStatus(w, req)
	})
}

func (r *Router) RegisterNewsRoutes(h *NewsHandler) {
	r.Handle("/api/news", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.List(w, req)
		case http.MethodPost:
			h.Add(w, req)
		case http.MethodDelete:
			h.Delete(w, req)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
		}
	})
}

// HealthCheck named dependency check
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RegisterHealthRoutes answers 200 {status:"ok"} or 503 with the failing dependencies.
func (r *Router) RegisterHealthRoutes(checks ...HealthCheck) {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		failed := map[string]string{}
		for _, c := range checks {
			if err := c.Check(req.Context()); err != nil {
				failed[c.Name] = err.Error()
			}
		}
		if len(failed) > 0 {
			r.logger.Warn("Health check failed", zap.Any("failed", failed))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "failed": failed})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
