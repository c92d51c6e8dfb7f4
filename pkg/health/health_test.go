package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(h http.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestLiveEndpoint(t *testing.T) {
	t.Run("NoChecks", func(t *testing.T) {
		w := serve(New().LiveEndpoint)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})
	t.Run("BelowThreshold", func(t *testing.T) {
		h := New()
		h.AddLivenessCheck("goroutines", time.Second, failing("too many"))
		h.liveness[0].run(context.Background())
		h.liveness[0].run(context.Background())

		assert.Equal(t, http.StatusOK, serve(h.LiveEndpoint).Code)
	})
	t.Run("Failing", func(t *testing.T) {
		h := New()
		h.AddLivenessCheck("goroutines", time.Second, failing("too many"))
		for range 3 {
			h.liveness[0].run(context.Background())
		}

		w := serve(h.LiveEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","checks":{"goroutines":"too many"}}`, w.Body.String())
	})
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("NotMarkedReady", func(t *testing.T) {
		h := New()
		h.AddReadinessCheck("postgres", time.Second, passing)

		w := serve(h.ReadyEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","checks":{"_readiness":"service is not ready"}}`, w.Body.String())
	})
	t.Run("Ready", func(t *testing.T) {
		h := New()
		h.AddReadinessCheck("postgres", time.Second, passing)
		h.SetReady(true)

		assert.Equal(t, http.StatusOK, serve(h.ReadyEndpoint).Code)
		assert.True(t, h.IsReady())
	})
	t.Run("Draining", func(t *testing.T) {
		h := New()
		h.SetReady(true)
		h.SetReady(false)

		assert.Equal(t, http.StatusServiceUnavailable, serve(h.ReadyEndpoint).Code)
		assert.False(t, h.IsReady())
	})
	t.Run("OneDependencyDown", func(t *testing.T) {
		h := New()
		h.AddReadinessCheck("postgres", time.Second, passing)
		h.AddReadinessCheck("redis", time.Second, failing("connection refused"), Thresholds{Failure: 1, Success: 1})
		h.SetReady(true)
		for _, c := range h.readiness {
			c.run(context.Background())
		}

		w := serve(h.ReadyEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","checks":{"redis":"connection refused"}}`, w.Body.String())
		assert.False(t, h.IsReady())
	})
}

func TestCheckRecovers(t *testing.T) {
	var (
		mu   sync.Mutex
		fail = true
	)
	h := New()
	h.AddReadinessCheck("postgres", time.Second, func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return errors.New("down")
		}
		return nil
	}, Thresholds{Failure: 1, Success: 2})
	h.SetReady(true)
	c := h.readiness[0]

	c.run(context.Background())
	require.False(t, h.IsReady())
	assert.EqualError(t, c.err(), "down")

	mu.Lock()
	fail = false
	mu.Unlock()

	c.run(context.Background())
	assert.False(t, h.IsReady(), "one success is below the threshold")
	c.run(context.Background())
	assert.True(t, h.IsReady())
	assert.NoError(t, c.err())
}

func TestStartStop(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, failing("err"))
	h.AddReadinessCheck("postgres", time.Second, passing)
	h.SetReady(true)

	h.Start(context.Background(), 5*time.Millisecond)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				h.IsReady()
				serve(h.LiveEndpoint)
				serve(h.ReadyEndpoint)
			}
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		return serve(h.LiveEndpoint).Code == http.StatusServiceUnavailable
	}, time.Second, 5*time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestCheckers(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, PingCheck(pinger{})(ctx))
	assert.EqualError(t, PingCheck(pinger{err: errors.New("refused")})(ctx), "refused")

	assert.NoError(t, GoroutineCountCheck(100000)(ctx))
	err := GoroutineCountCheck(0)(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")

	assert.NoError(t, GCMaxPauseCheck(time.Hour)(ctx))
}
