package usecase

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpGoServer "github.com/mark3labs/mcp-go/server"
)

// BubbleAPI is the outbound port to the Bubble application. One method per
// catalog tool; each performs exactly one upstream request. Implemented by
// adapter/outbound/bubble and mocked in tests.
type BubbleAPI interface {
	// GetSchema returns the application metadata (data types and workflows).
	// Implementations memoize the first successful response.
	GetSchema(ctx context.Context) (interface{}, error)

	// List returns records of a data type, forwarding the pagination options.
	List(ctx context.Context, dataType string, opts ListOptions) (interface{}, error)

	// Get returns one record by unique id.
	Get(ctx context.Context, dataType, id string) (interface{}, error)

	// Create inserts a record and returns the upstream response.
	Create(ctx context.Context, dataType string, data map[string]interface{}) (interface{}, error)

	// Update changes fields of an existing record.
	Update(ctx context.Context, dataType, id string, data map[string]interface{}) (interface{}, error)

	// Delete removes one record by unique id.
	Delete(ctx context.Context, dataType, id string) (interface{}, error)

	// TriggerWorkflow runs the named API workflow with the given payload.
	TriggerWorkflow(ctx context.Context, workflow string, data map[string]interface{}) (interface{}, error)
}

// ListOptions carries the optional pagination arguments of the list tool.
// A nil field means the caller did not supply the argument and it must not be
// forwarded upstream. Any non-nil value, zero included, is forwarded verbatim.
type ListOptions struct {
	Limit  interface{}
	Cursor interface{}
}

// MCPServerAdapter is what RegisterToolsUseCase needs from the underlying MCP
// server. *server.MCPServer from mark3labs/mcp-go satisfies it; tests use a
// recording mock.
type MCPServerAdapter interface {
	AddTool(tool mcp.Tool, handlerFunc mcpGoServer.ToolHandlerFunc)
}

// ArgumentError reports a missing or malformed tool argument. Raised before
// any upstream request is made.
type ArgumentError struct {
	msg string
}

func (e *ArgumentError) Error() string { return e.msg }

func argErrorf(format string, a ...interface{}) error {
	return &ArgumentError{msg: fmt.Sprintf(format, a...)}
}
