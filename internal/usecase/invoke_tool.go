package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/bubblco/bubble-mcp/internal/domain"
)

const otelName = "github.com/bubblco/bubble-mcp/internal/usecase"

// InvokeToolUseCase dispatches one MCP tool call to the Bubble API and folds
// every outcome, success or failure, into a call result. It never returns an
// error to the protocol layer: a failed call is a result with IsError set, so
// the model sees the failure as tool output rather than a protocol fault.
type InvokeToolUseCase struct {
	api       BubbleAPI
	readWrite bool
	logger    *slog.Logger
	tracer    trace.Tracer
	calls     metric.Int64Counter
}

// NewInvokeToolUseCase creates the dispatcher. The read-write flag is fixed
// here: the mode is decided once at startup, never per call.
func NewInvokeToolUseCase(api BubbleAPI, readWrite bool, logger *slog.Logger) *InvokeToolUseCase {
	calls, err := otel.Meter(otelName).Int64Counter("bubble_mcp.tool_invocations",
		metric.WithDescription("Tool invocation attempts by tool and outcome."))
	if err != nil {
		logger.Warn("Failed to create invocation counter.", slog.Any("error", err))
	}
	return &InvokeToolUseCase{
		api:       api,
		readWrite: readWrite,
		logger:    logger.With("usecase", "InvokeTool"),
		tracer:    otel.Tracer(otelName),
		calls:     calls,
	}
}

// Execute runs the named tool. The step order is fixed: mode gate, audit
// line, argument presence, then dispatch. Only dispatch touches the network.
func (uc *InvokeToolUseCase) Execute(ctx context.Context, name string, args map[string]interface{}) *mcp.CallToolResult {
	ctx, span := uc.tracer.Start(ctx, "InvokeTool",
		trace.WithAttributes(attribute.String("tool", name)))
	defer span.End()

	tool, known := domain.Lookup(name)

	if known && tool.Kind.Mutating() && !uc.readWrite {
		uc.logger.Info("Tool call blocked in read-only mode.", slog.String("tool", name))
		uc.count(ctx, name, "blocked")
		return mcp.NewToolResultError(fmt.Sprintf(
			"Tool %q is disabled: the server is running in read-only mode. "+
				"Set BUBBLE_API_MODE=read-write to enable tools that modify data.", name))
	}

	uc.logger.Info("Invoking tool.",
		slog.String("tool", name),
		slog.String("args", renderArgs(args)))

	if args == nil && (!known || tool.Kind != domain.KindGetSchema) {
		uc.count(ctx, name, "invalid_args")
		return mcp.NewToolResultError(fmt.Sprintf("Arguments are required for tool %q.", name))
	}

	if !known {
		uc.count(ctx, name, "unknown_tool")
		return mcp.NewToolResultError(fmt.Sprintf("Unknown tool %q.", name))
	}

	result, err := uc.dispatch(ctx, tool.Kind, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		uc.logger.Error("Tool invocation failed.",
			slog.String("tool", name),
			slog.Any("error", err))
		outcome := "error"
		var argErr *ArgumentError
		if errors.As(err, &argErr) {
			outcome = "invalid_args"
		}
		uc.count(ctx, name, outcome)
		return mcp.NewToolResultError(err.Error())
	}

	uc.count(ctx, name, "ok")
	return mcp.NewToolResultText(renderResult(result))
}

// dispatch extracts each kind's required arguments and performs the upstream
// call. Arguments not named here are ignored; the data object is forwarded
// whole as the request body where one applies.
func (uc *InvokeToolUseCase) dispatch(ctx context.Context, kind domain.Kind, args map[string]interface{}) (interface{}, error) {
	switch kind {
	case domain.KindGetSchema:
		return uc.api.GetSchema(ctx)

	case domain.KindList:
		dataType, err := requiredString(args, "dataType")
		if err != nil {
			return nil, err
		}
		return uc.api.List(ctx, dataType, ListOptions{
			Limit:  args["limit"],
			Cursor: args["cursor"],
		})

	case domain.KindGet:
		dataType, err := requiredString(args, "dataType")
		if err != nil {
			return nil, err
		}
		id, err := requiredString(args, "id")
		if err != nil {
			return nil, err
		}
		return uc.api.Get(ctx, dataType, id)

	case domain.KindCreate:
		dataType, err := requiredString(args, "dataType")
		if err != nil {
			return nil, err
		}
		data, err := requiredObject(args, "data")
		if err != nil {
			return nil, err
		}
		return uc.api.Create(ctx, dataType, data)

	case domain.KindUpdate:
		dataType, err := requiredString(args, "dataType")
		if err != nil {
			return nil, err
		}
		id, err := requiredString(args, "id")
		if err != nil {
			return nil, err
		}
		data, err := requiredObject(args, "data")
		if err != nil {
			return nil, err
		}
		return uc.api.Update(ctx, dataType, id, data)

	case domain.KindDelete:
		dataType, err := requiredString(args, "dataType")
		if err != nil {
			return nil, err
		}
		id, err := requiredString(args, "id")
		if err != nil {
			return nil, err
		}
		return uc.api.Delete(ctx, dataType, id)

	case domain.KindWorkflow:
		workflow, err := requiredString(args, "workflowName")
		if err != nil {
			return nil, err
		}
		data, err := optionalObject(args, "data")
		if err != nil {
			return nil, err
		}
		return uc.api.TriggerWorkflow(ctx, workflow, data)
	}

	return nil, fmt.Errorf("unhandled tool kind %v", kind)
}

func (uc *InvokeToolUseCase) count(ctx context.Context, tool, outcome string) {
	if uc.calls == nil {
		return
	}
	uc.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("outcome", outcome)))
}

func requiredString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", argErrorf("Missing required argument %q.", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", argErrorf("Argument %q must be a non-empty string.", key)
	}
	return s, nil
}

func requiredObject(args map[string]interface{}, key string) (map[string]interface{}, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, argErrorf("Missing required argument %q.", key)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, argErrorf("Argument %q must be an object.", key)
	}
	return m, nil
}

// optionalObject returns an empty object for an absent or null value.
func optionalObject(args map[string]interface{}, key string) (map[string]interface{}, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return map[string]interface{}{}, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, argErrorf("Argument %q must be an object.", key)
	}
	return m, nil
}

// renderArgs flattens the argument map for the audit line: scalars verbatim,
// nested values as compact JSON, nil values omitted. Keys are sorted so the
// line is stable.
func renderArgs(args map[string]interface{}) string {
	if args == nil {
		return "(none)"
	}
	keys := make([]string, 0, len(args))
	for k, v := range args {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := args[k].(type) {
		case map[string]interface{}, []interface{}:
			b, err := json.Marshal(v)
			if err != nil {
				parts = append(parts, fmt.Sprintf("%s=%v", k, v))
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%s", k, b))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}

// renderResult pretty-prints the upstream response for the text content
// block. Values come from a JSON decoder, so the fallback is effectively
// unreachable.
func renderResult(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
