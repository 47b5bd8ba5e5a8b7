package usecase

import (
	"context"
	"log/slog"

	"github.com/bubblco/bubble-mcp/internal/domain"
)

// ServeToolsUseCase lists the tool catalog for surfaces outside the MCP
// protocol, i.e. the ops HTTP endpoints.
type ServeToolsUseCase struct {
	logger *slog.Logger
}

// NewServeToolsUseCase creates a new ServeToolsUseCase.
func NewServeToolsUseCase(logger *slog.Logger) *ServeToolsUseCase {
	return &ServeToolsUseCase{
		logger: logger.With("usecase", "ServeTools"),
	}
}

// Execute returns the catalog in its fixed order.
func (uc *ServeToolsUseCase) Execute(ctx context.Context) ([]domain.Tool, error) {
	tools := domain.Catalog()
	uc.logger.Debug("Listing tools.", slog.Int("count", len(tools)))
	return tools, nil
}
