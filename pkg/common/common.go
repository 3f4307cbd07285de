package common

import (
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// UUIDint64 returns a cluster-unique int64 identifier.
func UUIDint64() int64 {
	snowflakeOnce.Do(func() {
		var err error
		snowflakeNode, err = snowflake.NewNode(int64(os.Getpid()) % 1024)
		if err != nil {
			// Fall back to a random node id; snowflake only rejects ids outside [0,1023].
			snowflakeNode, _ = snowflake.NewNode(rand.Int63n(1024))
		}
	})
	return snowflakeNode.Generate().Int64()
}

// FileExists checks if a file or directory exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MustStrToTime parses a time string in RFC3339 or date-only form, zero time on failure.
func MustStrToTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local)
	return t
}
