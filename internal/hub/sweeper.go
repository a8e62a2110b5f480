package hub

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSweepInterval = 10 * time.Minute
	DefaultUnmatchedTTL  = time.Hour
)

// Sweeper periodically asks the hub to evict duels nobody joined within ttl.
// It never touches the store itself: each tick becomes a Sweep event.
type Sweeper struct {
	hub      *Hub
	interval time.Duration
	ttl      time.Duration
	log      *zap.Logger
}

func NewSweeper(h *Hub, interval, ttl time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if ttl <= 0 {
		ttl = DefaultUnmatchedTTL
	}
	return &Sweeper{hub: h, interval: interval, ttl: ttl, log: log.Named("sweeper")}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				s.log.Warn("sweep not queued", zap.Error(err))
			}
		}
	}
}

// Tick queues one sweep using the hub's clock.
func (s *Sweeper) Tick() error {
	return s.hub.enqueue(Sweep{Cutoff: s.hub.now().Add(-s.ttl)})
}
