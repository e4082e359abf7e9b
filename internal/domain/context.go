package domain

import "context"

type contextKey string

const callDepthKey contextKey = "weft.call_depth"

// WithCallDepth records the cross-workflow call nesting depth on the
// context so a chain of workflow-to-workflow triggers can be bounded.
func WithCallDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, callDepthKey, depth)
}

// CallDepth returns the recorded call nesting depth, zero if none.
func CallDepth(ctx context.Context) int {
	if depth, ok := ctx.Value(callDepthKey).(int); ok {
		return depth
	}
	return 0
}
