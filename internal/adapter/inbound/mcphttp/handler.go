package mcphttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bubblco/bubble-mcp/internal/usecase"
)

// Handlers holds dependencies for the ops HTTP endpoints. These run next to
// the MCP transport on their own listener and never carry tool-call traffic.
type Handlers struct {
	serveToolsUseCase *usecase.ServeToolsUseCase
	logger            *slog.Logger
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(serveUC *usecase.ServeToolsUseCase, logger *slog.Logger) *Handlers {
	return &Handlers{
		serveToolsUseCase: serveUC,
		logger:            logger.With("component", "mcphttp_handler"),
	}
}

// Router builds the ops router: a health probe and a read-only view of the
// tool catalog.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.handleHealth)
	r.Get("/tools", h.handleListTools)

	return r
}

func (h *Handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleListTools implements GET /tools.
func (h *Handlers) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.serveToolsUseCase.Execute(r.Context())
	if err != nil {
		h.logger.Error("Failed to list tools.", slog.Any("error", err))
		http.Error(w, "failed to list tools", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"tools": tools})
}
