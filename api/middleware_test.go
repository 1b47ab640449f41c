package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/personal-blog-backend/config"
)

func TestClientLimiterEvictsIdleClients(t *testing.T) {
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	l := newClientLimiter("comment", 30)
	l.now = func() time.Time { return clock }
	l.lastSweep = clock

	l.limiter("198.51.100.1")
	clock = clock.Add(5 * time.Minute)
	l.limiter("198.51.100.2")
	require.Len(t, l.entries, 2)

	clock = clock.Add(limiterIdleTTL)
	l.limiter("198.51.100.3")

	assert.Len(t, l.entries, 1)
	assert.Contains(t, l.entries, "198.51.100.3")
}

func TestClientLimiterKeepsActiveClients(t *testing.T) {
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	l := newClientLimiter("comment", 30)
	l.now = func() time.Time { return clock }
	l.lastSweep = clock

	first := l.limiter("198.51.100.1")
	clock = clock.Add(limiterIdleTTL - time.Minute)
	l.limiter("198.51.100.1")
	clock = clock.Add(2 * time.Minute)

	assert.Same(t, first, l.limiter("198.51.100.1"))
}

func contactRequest(t *testing.T, s *testServer, forwardedFor string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.RemoteAddr = "203.0.113.7:41000"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestContactLimitIgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, contactRequest(t, s, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, contactRequest(t, s, "10.0.0.2"))
}

func TestContactLimitBehindTrustedProxy(t *testing.T) {
	s := newTestServer(t, func(c *config.Settings) { c.TrustProxyHeaders = true })

	assert.Equal(t, http.StatusBadRequest, contactRequest(t, s, "10.0.0.1"))
	assert.Equal(t, http.StatusBadRequest, contactRequest(t, s, "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, contactRequest(t, s, "10.0.0.1"))
}
