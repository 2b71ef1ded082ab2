// Package network tracks whether the upstream cart API is reachable.
package network

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the connectivity signal consumed by the offline cart queue
type Status interface {
	IsOnline() bool
	// OnStatusChange registers cb for every online/offline transition.
	// Calling the returned function removes the subscription.
	OnStatusChange(cb func(online bool)) (unsubscribe func())
}

// Monitor is an edge-triggered Status. Subscribers only hear about actual
// transitions, never about repeated reports of the same state.
type Monitor struct {
	mu          sync.Mutex
	online      bool
	nextID      int
	subscribers map[int]func(bool)

	probeURL string
	interval time.Duration
	client   *http.Client
	logger   *zap.Logger
}

// MonitorConfig configures the health probe of a Monitor
type MonitorConfig struct {
	ProbeURL      string
	Interval      time.Duration
	Timeout       time.Duration
	InitialOnline bool
}

// NewMonitor creates a Monitor in the configured initial state
func NewMonitor(cfg MonitorConfig, logger *zap.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &Monitor{
		online:      cfg.InitialOnline,
		subscribers: make(map[int]func(bool)),
		probeURL:    cfg.ProbeURL,
		interval:    cfg.Interval,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

// IsOnline reports the last known state
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnStatusChange implements Status
func (m *Monitor) OnStatusChange(cb func(online bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = cb
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers, id)
			m.mu.Unlock()
		})
	}
}

// Set records the current state and notifies subscribers if it changed.
// Callbacks run on the calling goroutine, outside the monitor lock.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	callbacks := make([]func(bool), 0, len(m.subscribers))
	for id := 0; id < m.nextID; id++ {
		if cb, ok := m.subscribers[id]; ok {
			callbacks = append(callbacks, cb)
		}
	}
	m.mu.Unlock()

	m.logger.Info("Network status changed", zap.Bool("online", online))

	for _, cb := range callbacks {
		cb(online)
	}
}

// Run probes the upstream health endpoint until ctx is cancelled. Without a
// probe URL it only waits for cancellation and the state changes via Set.
func (m *Monitor) Run(ctx context.Context) {
	if m.probeURL == "" {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		online := m.probe(ctx)
		if ctx.Err() != nil {
			return
		}
		m.Set(online)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.probeURL, nil)
	if err != nil {
		m.logger.Error("Failed to build probe request", zap.Error(err))
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.Debug("Upstream probe failed", zap.String("url", m.probeURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusInternalServerError
}
