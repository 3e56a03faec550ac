package api

import (
	"net/http"
	"time"

	"github.com/zrctl/internal/version"
)

// HealthStatus is the full health check response.
type HealthStatus struct {
	Status    string         `json:"status"` // "ok" or "degraded"
	Time      time.Time      `json:"time"`
	Uptime    string         `json:"uptime"`
	UptimeSec float64        `json:"uptime_seconds"`
	Version   version.Info   `json:"version"`
	Device    DeviceHealth   `json:"device"`
	Monitor   *MonitorHealth `json:"monitor,omitempty"`
	Cache     *CacheHealth   `json:"cache,omitempty"`
}

// DeviceHealth reports the shell channel.
type DeviceHealth struct {
	Connected bool `json:"connected"`
}

// MonitorHealth reports the status poller.
type MonitorHealth struct {
	LastPoll  *time.Time `json:"last_poll,omitempty"`
	AgeSec    float64    `json:"age_seconds"`
	Polls     uint64     `json:"polls"`
	Failures  uint64     `json:"failures"`
	LastError string     `json:"last_error,omitempty"`
}

// CacheHealth reports snapshot cache status.
type CacheHealth struct {
	Keys    uint64  `json:"keys"`
	HitRate float64 `json:"hit_rate"`
}

// CheckHealth gathers the health report. It never touches the device.
func (s *Server) CheckHealth() *HealthStatus {
	now := time.Now()
	uptime := now.Sub(s.started).Truncate(time.Second)

	hs := &HealthStatus{
		Status:    "ok",
		Time:      now.UTC(),
		Uptime:    uptime.String(),
		UptimeSec: uptime.Seconds(),
		Version:   version.Get(),
		Device:    DeviceHealth{Connected: s.session.Executor().Gateway().IsConnected()},
	}
	if !hs.Device.Connected {
		hs.Status = "degraded"
	}

	if s.poller != nil {
		h := s.poller.Health()
		mh := &MonitorHealth{Polls: h.Polls, Failures: h.Failures, LastError: h.LastError}
		if !h.LastPoll.IsZero() {
			last := h.LastPoll.UTC()
			mh.LastPoll = &last
			mh.AgeSec = now.Sub(h.LastPoll).Seconds()
		}
		if h.LastError != "" {
			hs.Status = "degraded"
		}
		hs.Monitor = mh
	}

	if s.cache != nil {
		m := s.cache.GetMetrics()
		ch := &CacheHealth{Keys: m.Keys}
		if total := m.Hits + m.Misses; total > 0 {
			ch.HitRate = float64(m.Hits) / float64(total)
		}
		hs.Cache = ch
	}
	return hs
}

// HealthHandler handles health check requests
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSONSuccess(w, s.CheckHealth())
}
