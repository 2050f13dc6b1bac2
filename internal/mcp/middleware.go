package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// LoggingMiddleware returns middleware that logs all incoming method calls.
// Each call gets a random call_id so start and end lines can be correlated.
func LoggingMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			start := time.Now()
			callID := uuid.NewString()

			attrs := []slog.Attr{
				slog.String("method", method),
				slog.String("call_id", callID),
			}
			if ctr, ok := req.(*sdkmcp.CallToolRequest); ok && ctr.Params != nil {
				attrs = append(attrs, slog.String("tool", ctr.Params.Name))
			}
			slog.LogAttrs(ctx, slog.LevelDebug, "method call started", attrs...)

			result, err := next(ctx, method, req)

			attrs = append(attrs, slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				slog.LogAttrs(ctx, slog.LevelError, "method call failed", attrs...)
			} else {
				slog.LogAttrs(ctx, slog.LevelInfo, "method call completed", attrs...)
			}

			return result, err
		}
	}
}
