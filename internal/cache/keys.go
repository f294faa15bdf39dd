package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	AccountKeyPrefix = "account:%s"
)

const (
	// AccountTTL bounds staleness of cached actor lookups between the
	// mutation-driven invalidations.
	AccountTTL = 5 * time.Minute
)

func AccountKey(subjectID string) string {
	return fmt.Sprintf(AccountKeyPrefix, subjectID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateAccount drops the cached record for a subject. Every lifecycle
// mutation calls this so guards never act on a stale status or role.
func InvalidateAccount(ctx context.Context, subjectID string) {
	Invalidate(ctx, AccountKey(subjectID))
}
