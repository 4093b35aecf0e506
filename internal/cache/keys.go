package cache

import (
	"fmt"
	"time"
)

// Cache TTLs. Feed pages are short-lived because like and comment
// counts drift; identity snapshots tolerate longer staleness.
const (
	FeedTTL     = 30 * time.Second
	IdentityTTL = 10 * time.Minute
)

// FeedKey is the cache key for one page of the public feed.
func FeedKey(filter string, limit, offset int) string {
	return fmt.Sprintf("feed:%s:%d:%d", filter, limit, offset)
}

// IdentityKey is the cache key for an identity provider user snapshot.
func IdentityKey(userID string) string {
	return fmt.Sprintf("identity:%s", userID)
}
