package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bubblco/bubble-mcp/internal/domain"
)

// RegisterToolsUseCase announces the fixed tool catalog to the MCP server and
// binds each tool to the dispatcher. Registration happens once at startup;
// the catalog never changes afterwards.
type RegisterToolsUseCase struct {
	server  MCPServerAdapter
	invoker *InvokeToolUseCase
	logger  *slog.Logger
}

// NewRegisterToolsUseCase creates a new RegisterToolsUseCase.
func NewRegisterToolsUseCase(server MCPServerAdapter, invoker *InvokeToolUseCase, logger *slog.Logger) *RegisterToolsUseCase {
	return &RegisterToolsUseCase{
		server:  server,
		invoker: invoker,
		logger:  logger.With("usecase", "RegisterTools"),
	}
}

// Execute registers every catalog entry, in catalog order. Handlers always
// return a nil error: failures travel inside the result, so the model sees
// them as tool output instead of a protocol fault.
func (uc *RegisterToolsUseCase) Execute() error {
	tools := domain.Catalog()
	for _, tool := range tools {
		schemaJSON, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return fmt.Errorf("failed to marshal input schema for tool %s: %w", tool.Name, err)
		}

		uc.server.AddTool(
			mcp.NewToolWithRawSchema(tool.Name, tool.Description, schemaJSON),
			func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return uc.invoker.Execute(ctx, tool.Name, req.GetArguments()), nil
			},
		)
		uc.logger.Debug("Registered tool.", slog.String("tool", tool.Name))
	}

	uc.logger.Info("Tool catalog registered.", slog.Int("count", len(tools)))
	return nil
}
