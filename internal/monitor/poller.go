package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zrctl/internal/cache"
	"github.com/zrctl/internal/logging"
	"github.com/zrctl/internal/zoomrooms"
)

// Collector produces a full status snapshot.
type Collector interface {
	Collect(ctx context.Context) (*zoomrooms.Snapshot, error)
}

// Config holds poller settings
type Config struct {
	Device   string        // cache key component
	Interval time.Duration // zero disables the background loop
	TTL      time.Duration // cached snapshot lifetime

	CollectTimeout time.Duration // bound on one shared device round
	Logger         *slog.Logger
}

// Health describes the most recent poll.
type Health struct {
	LastPoll  time.Time `json:"last_poll,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Polls     uint64    `json:"polls"`
	Failures  uint64    `json:"failures"`
}

// Poller keeps the latest snapshot in the cache and collapses concurrent
// refreshes into a single device round.
type Poller struct {
	collector Collector
	cache     cache.Cache
	key       string
	config    Config
	logger    *slog.Logger
	group     singleflight.Group

	mu      sync.RWMutex
	latest  *zoomrooms.Snapshot
	health  Health
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewPoller creates a poller. c may be nil, in which case only the last
// snapshot is kept in memory.
func NewPoller(collector Collector, c cache.Cache, cfg Config) *Poller {
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Minute
	}
	if cfg.CollectTimeout <= 0 {
		cfg.CollectTimeout = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.With("component", "monitor")
	}
	return &Poller{
		collector: collector,
		cache:     c,
		key:       cache.NewKeyGenerator("").SnapshotKey(cfg.Device),
		config:    cfg,
		logger:    cfg.Logger,
	}
}

// Start begins periodic polling. It is a no-op when already running or
// when no interval is configured.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running || p.config.Interval <= 0 {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stop = make(chan struct{})
	p.mu.Unlock()

	p.logger.Info("starting status monitor", "interval", p.config.Interval, "ttl", p.config.TTL)

	p.wg.Add(1)
	go p.run(ctx)
}

// Stop halts the polling loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("status monitor stopped")
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if _, err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
		p.logger.Warn("status poll failed", logging.Err(err))
	}
}

// Refresh collects a new snapshot. Callers arriving while a collection is in
// flight share its result. The shared collection runs detached from any one
// caller, bounded by CollectTimeout, so a caller that gives up does not fail
// the others.
func (p *Poller) Refresh(ctx context.Context) (*zoomrooms.Snapshot, error) {
	ch := p.group.DoChan(p.key, func() (interface{}, error) {
		collectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.config.CollectTimeout)
		defer cancel()
		return p.collect(collectCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			p.logger.Debug("shared in-flight status poll")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*zoomrooms.Snapshot), nil
	}
}

func (p *Poller) collect(ctx context.Context) (*zoomrooms.Snapshot, error) {
	start := time.Now()
	snap, err := p.collector.Collect(ctx)

	p.mu.Lock()
	p.health.Polls++
	p.health.LastPoll = start
	if err != nil {
		p.health.Failures++
		p.health.LastError = err.Error()
	} else {
		p.health.LastError = ""
		p.latest = snap
	}
	p.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("collect status: %w", err)
	}

	p.logger.Debug("status collected",
		logging.State(snap.State.String()),
		logging.Duration("elapsed", time.Since(start)),
		logging.Count("statistics", len(snap.Statistics)))

	if p.cache != nil {
		data, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
		if err := p.cache.Set(ctx, p.key, data, p.config.TTL); err != nil {
			p.logger.Warn("failed to cache snapshot", logging.Err(err))
		}
	}
	return snap, nil
}

// Latest returns the cached snapshot, refreshing when none is cached or it
// has expired.
func (p *Poller) Latest(ctx context.Context) (*zoomrooms.Snapshot, error) {
	if snap, ok := p.cached(ctx); ok {
		return snap, nil
	}
	return p.Refresh(ctx)
}

func (p *Poller) cached(ctx context.Context) (*zoomrooms.Snapshot, bool) {
	if p.cache == nil {
		p.mu.RLock()
		defer p.mu.RUnlock()
		if p.latest == nil || time.Since(p.latest.CollectedAt) > p.config.TTL {
			return nil, false
		}
		return p.latest, true
	}

	data, err := p.cache.Get(ctx, p.key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			p.logger.Warn("snapshot cache read failed", logging.Err(err))
		}
		return nil, false
	}
	var snap zoomrooms.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		p.logger.Warn("discarding undecodable cached snapshot", logging.Err(err))
		return nil, false
	}
	return &snap, true
}

// Invalidate drops the cached snapshot so the next Latest polls the device.
func (p *Poller) Invalidate(ctx context.Context) {
	p.mu.Lock()
	p.latest = nil
	p.mu.Unlock()

	if p.cache == nil {
		return
	}
	if err := p.cache.Delete(ctx, p.key); err != nil {
		p.logger.Warn("failed to invalidate snapshot", logging.Err(err))
	}
}

// Health reports the most recent poll outcome.
func (p *Poller) Health() Health {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}
