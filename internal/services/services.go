// Package services holds the business logic between the HTTP handlers and
// the store: authorization, population of references, cascade delete and
// activity recording.
package services

import (
	"context"
	"time"
)

// Notifier pushes encoded messages to connected users.
type Notifier interface {
	Publish(audience []string, message []byte)
}

// FileRemover deletes stored upload files.
type FileRemover interface {
	Remove(name string) error
}

// withTimeout bounds one service operation by d. A zero d only inherits ctx.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// audience collects the distinct non-empty user IDs.
func audience(ids ...string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
