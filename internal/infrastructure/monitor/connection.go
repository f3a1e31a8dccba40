package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultProbeTimeout = 3 * time.Second

// Monitor periodically runs dependency probes and caches the outcome so the
// health endpoint never blocks on a slow dependency.
type Monitor struct {
	probes []Probe

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger, probes ...Probe) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Start runs a first check synchronously, then keeps refreshing in the background.
func (m *Monitor) Start() {
	m.Refresh(context.Background())
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for name, ok := range m.status.Services {
		services[name] = ok
	}
	return Status{Services: services, LastCheck: m.status.LastCheck}
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) {
	services := make(map[string]bool, len(m.probes))
	for _, probe := range m.probes {
		services[probe.Name] = m.run(ctx, probe)
	}

	m.mu.Lock()
	previous := m.status.Services
	m.status = Status{Services: services, LastCheck: time.Now()}
	m.mu.Unlock()

	for name, ok := range services {
		if was, seen := previous[name]; seen && was != ok {
			m.logger.Warn("dependency health changed", zap.String("service", name), zap.Bool("online", ok))
		}
	}
}

func (m *Monitor) run(ctx context.Context, probe Probe) bool {
	if probe.Check == nil {
		return false
	}
	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := probe.Check(checkCtx); err != nil {
		m.logger.Debug("probe failed", zap.String("service", probe.Name), zap.Error(err))
		return false
	}
	return true
}
