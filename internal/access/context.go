package access

import "context"

type recordContextKey struct{}

// ContextWithRecord stores the resolved role record in context for handlers
// downstream of the guard.
func ContextWithRecord(ctx context.Context, record Record) context.Context {
	return context.WithValue(ctx, recordContextKey{}, record)
}

// RecordFromContext extracts the resolved role record. The boolean is false
// outside guarded routes.
func RecordFromContext(ctx context.Context) (Record, bool) {
	record, ok := ctx.Value(recordContextKey{}).(Record)
	return record, ok
}
