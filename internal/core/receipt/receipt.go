// Package receipt generates human-presentable receipt identifiers for
// payment attempts.
package receipt

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	prefix    = "RCT"
	randomLen = 8
	alphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generate produces a receipt number of the form RCT-<unix-ms>-<random>.
// The millisecond timestamp plus 8 random alphanumerics make collisions
// across concurrent callers negligible without any coordination.
func Generate() string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	buf := make([]byte, randomLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// nothing sensible to fall back to.
		panic(fmt.Sprintf("receipt: entropy source unavailable: %v", err))
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}
