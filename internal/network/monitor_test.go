package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSetNotifiesOnlyOnTransitions(t *testing.T) {
	m := NewMonitor(MonitorConfig{InitialOnline: true}, zap.NewNop())

	var events []bool
	unsubscribe := m.OnStatusChange(func(online bool) { events = append(events, online) })
	defer unsubscribe()

	m.Set(true)
	m.Set(false)
	m.Set(false)
	m.Set(true)

	if len(events) != 2 || events[0] != false || events[1] != true {
		t.Errorf("Expected [false true], got %v", events)
	}
	if !m.IsOnline() {
		t.Error("Expected monitor to be online")
	}
}

func TestUnsubscribeStopsCallbacks(t *testing.T) {
	m := NewMonitor(MonitorConfig{}, zap.NewNop())

	calls := 0
	unsubscribe := m.OnStatusChange(func(bool) { calls++ })
	m.Set(true)
	unsubscribe()
	unsubscribe() // second call is harmless
	m.Set(false)

	if calls != 1 {
		t.Errorf("Expected exactly one callback, got %d", calls)
	}
}

func TestSubscribersRunInRegistrationOrder(t *testing.T) {
	m := NewMonitor(MonitorConfig{}, zap.NewNop())

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		m.OnStatusChange(func(bool) { order = append(order, i) })
	}
	m.Set(true)

	for i, got := range order {
		if got != i {
			t.Fatalf("Expected registration order, got %v", order)
		}
	}
}

func TestRunProbesUpstream(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	m := NewMonitor(MonitorConfig{
		ProbeURL: upstream.URL + "/health",
		Interval: 10 * time.Millisecond,
	}, zap.NewNop())

	var mu sync.Mutex
	var events []bool
	m.OnStatusChange(func(online bool) {
		mu.Lock()
		events = append(events, online)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return m.IsOnline() })
	healthy.Store(false)
	waitFor(t, func() bool { return !m.IsOnline() })

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 || events[0] != true || events[1] != false {
		t.Errorf("Expected [true false], got %v", events)
	}
}

func TestRunWithoutProbeWaitsForCancel(t *testing.T) {
	m := NewMonitor(MonitorConfig{InitialOnline: true}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !m.IsOnline() {
		t.Error("State must not change without a probe")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
