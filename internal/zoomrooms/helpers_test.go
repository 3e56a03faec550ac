package zoomrooms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zrctl/internal/shell/shelltest"
)

// sleepRecorder replaces real waits and records requested durations.
type sleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, d)
	return ctx.Err()
}

func (r *sleepRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestExecutor(gw Gateway, sleeper *sleepRecorder) *Executor {
	return NewExecutor(gw, ExecutorConfig{
		MaxAttempts: 10,
		RetryDelay:  10 * time.Millisecond,
		Sleep:       sleeper.Sleep,
	})
}

// newTestSession wires a session to a simulated device.
func newTestSession(t *testing.T, dev *shelltest.Device) (*Session, *shelltest.FakeGateway, *sleepRecorder) {
	t.Helper()
	gw := shelltest.NewFakeGateway(dev.Respond)
	sleeper := &sleepRecorder{}
	session := NewSession(newTestExecutor(gw, sleeper), SessionConfig{
		PollAttempts: 5,
		PollDelay:    time.Second,
		Sleep:        sleeper.Sleep,
	})
	return session, gw, sleeper
}
