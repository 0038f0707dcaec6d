package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var receiptPattern = regexp.MustCompile(`^RCT-\d{13,}-[A-Z0-9]{8}$`)

func TestGenerate_Format(t *testing.T) {
	r := Generate()
	assert.Regexp(t, receiptPattern, r)

	parts := strings.Split(r, "-")
	require.Len(t, parts, 3)

	ms, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().UnixMilli(), ms, 5000)
}

func TestGenerate_NoDuplicatesUnderLoad(t *testing.T) {
	const n = 100_000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		r := Generate()
		if _, dup := seen[r]; dup {
			t.Fatalf("duplicate receipt after %d iterations: %s", i, r)
		}
		seen[r] = struct{}{}
	}
}
