package preview

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Handler serves the site directory for local preview. It has no data
// dependency on gallery generation; it simply serves whatever is on disk,
// including previously generated images and the metadata manifest.
type Handler struct {
	root   string
	files  http.Handler
	logger *zap.Logger
}

// NewHandler creates a preview handler rooted at the given directory.
func NewHandler(root string, logger *zap.Logger) *Handler {
	return &Handler{
		root:   root,
		files:  http.FileServer(http.Dir(root)),
		logger: logger,
	}
}

// RegisterRoutes registers the preview routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.Handle("/", h.logged(h.files))
}

// handleHealth handles GET /health - returns service health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"service": "pixel-gallery-preview",
		"root":    h.root,
	})
}

// logged wraps a handler with request logging.
func (h *Handler) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug("Served request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}
