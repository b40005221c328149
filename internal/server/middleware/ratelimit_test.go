package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/marketsync/internal/server/handlers"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, setupTestLogger())
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("agent:a1"), "request %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow("agent:a1"), "request over limit should be denied")

	// Другой ключ имеет собственный bucket
	assert.True(t, rl.Allow("agent:a2"))
}

func TestRateLimiter_RefillAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond, setupTestLogger())
	defer rl.Stop()

	assert.True(t, rl.Allow("agent:a1"))
	assert.False(t, rl.Allow("agent:a1"))

	time.Sleep(50 * time.Millisecond)

	assert.True(t, rl.Allow("agent:a1"), "tokens should refill after window")
}

func withAgentContext(req *http.Request, agentID string) *http.Request {
	ctx := context.WithValue(req.Context(), handlers.AgentIDKey, agentID)
	return req.WithContext(ctx)
}

func TestRateLimitMiddleware_KeyedByAgent(t *testing.T) {
	middleware := RateLimitMiddleware(2, time.Minute, setupTestLogger())
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(agentID string) int {
		req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
		req = withAgentContext(req, agentID)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("agent-1"))
	assert.Equal(t, http.StatusOK, send("agent-1"))
	assert.Equal(t, http.StatusTooManyRequests, send("agent-1"))

	// Лимит по агенту, а не глобальный
	assert.Equal(t, http.StatusOK, send("agent-2"))
}

func TestRateLimitMiddleware_FallsBackToIP(t *testing.T) {
	middleware := RateLimitMiddleware(1, time.Minute, setupTestLogger())
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234"))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.168.1.5:4567",
			want:       "192.168.1.5:4567",
		},
		{
			name:       "x-forwarded-for single",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for chain takes first",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
