package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reportdash/realtime/internal/connection"
	"github.com/reportdash/realtime/internal/model"
)

// MaintenanceConfig holds maintenance loop settings.
type MaintenanceConfig struct {
	Interval       time.Duration // Sweep interval (default: 30s)
	FailureBackoff time.Duration // Retry delay after a failed iteration (default: 10s)
}

// DefaultMaintenanceConfig returns sensible defaults.
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		Interval:       30 * time.Second,
		FailureBackoff: 10 * time.Second,
	}
}

// Maintenance is the single background activity that keeps the registry
// honest: each iteration probes every connection with a lightweight send,
// reaps the ones that fail, then broadcasts a liveness ping.
type Maintenance struct {
	cfg      MaintenanceConfig
	reg      *connection.Registry
	notifier *Notifier
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMaintenance creates the maintenance loop.
func NewMaintenance(cfg MaintenanceConfig, reg *connection.Registry, notifier *Notifier, logger *slog.Logger) *Maintenance {
	if logger == nil {
		logger = slog.Default()
	}
	return &Maintenance{
		cfg:      cfg,
		reg:      reg,
		notifier: notifier,
		logger:   logger,
	}
}

// Start begins the maintenance loop.
func (m *Maintenance) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go m.run()

	m.logger.Info("maintenance loop started",
		"interval", m.cfg.Interval,
		"failure_backoff", m.cfg.FailureBackoff,
	)
	return nil
}

// Stop gracefully shuts down the maintenance loop.
func (m *Maintenance) Stop(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("maintenance loop stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the maintenance goroutine. Iterations never overlap; a failed
// iteration shortens the sleep to FailureBackoff instead of killing the
// loop.
func (m *Maintenance) run() {
	defer m.wg.Done()

	for {
		delay := m.cfg.Interval
		if err := m.iterate(); err != nil {
			m.logger.Error("maintenance iteration failed", "error", err)
			delay = m.cfg.FailureBackoff
		}

		select {
		case <-m.ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// iterate runs one sweep-then-ping cycle. Panics are converted to errors
// at this boundary so a single bad iteration cannot terminate the loop.
func (m *Maintenance) iterate() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("maintenance panic: %v", r)
		}
	}()

	removed := m.sweepStale()
	if removed > 0 {
		m.logger.Info("stale connections reaped", "count", removed)
	}

	if m.reg.ActiveCount() > 0 {
		m.notifier.PingAll()
	}
	return nil
}

// sweepStale probes every connection with a lightweight send and removes
// the ones that fail.
func (m *Maintenance) sweepStale() int {
	removed := 0
	for _, p := range m.reg.Peers() {
		probe := model.NewPingEvent(time.Now(), m.reg.ActiveCount())
		probe.StampIfEmpty(time.Now())

		if err := p.Handle.WriteEvent(probe); err != nil {
			m.logger.Warn("stale connection detected",
				"client_id", p.ClientID,
				"error", err,
			)
			m.reg.Remove(p.Handle, p.ClientID)
			removed++
		}
	}
	return removed
}
