package cache

import (
	"fmt"
	"strings"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	DiscoveryGenKey     = "discover:gen"
	DiscoveryKeyPattern = "discover:v%d:%s:%d"
)

const (
	UserTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// DiscoveryKey names a ranked snapshot for a normalized tag set.
// gen is bumped whenever posts or ratings change, orphaning older snapshots.
func DiscoveryKey(gen int64, tags []string, limit int) string {
	set := strings.Join(tags, ",")
	if set == "" {
		set = "*"
	}
	return fmt.Sprintf(DiscoveryKeyPattern, gen, set, limit)
}
