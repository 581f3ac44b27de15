package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	l := NewInMemoryRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"))
	}
	assert.False(t, l.Allow("10.0.0.1"))

	// other clients have their own window
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestRateLimiterDefaults(t *testing.T) {
	l := NewInMemoryRateLimiter(0, 0)
	assert.Equal(t, DefaultRateLimit, l.limit)
	assert.Equal(t, DefaultRateWindow, l.window)
}
