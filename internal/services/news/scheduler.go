package news

import (
	"context"
	"sync"
	"time"

	"TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
)

// Scheduler refreshes the news engine on a fixed interval until stopped.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	timeout  time.Duration
	metrics  *metrics.Recorder
	log      *logger.Logger

	stop chan struct{}
	done sync.WaitGroup
	once sync.Once
}

func NewScheduler(engine *Engine, interval, fetchTimeout time.Duration, recorder *metrics.Recorder, log *logger.Logger) *Scheduler {
	return &Scheduler{
		engine:   engine,
		interval: interval,
		timeout:  fetchTimeout,
		metrics:  recorder,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Start launches the refresh loop. The first refresh runs immediately so the
// decision path has calendar data as soon as possible.
func (s *Scheduler) Start() {
	s.done.Add(1)
	go func() {
		defer s.done.Done()

		s.refresh()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.refresh()
			case <-s.stop:
				s.log.Info("news scheduler stopped")
				return
			}
		}
	}()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.engine.Refresh(ctx); err != nil {
		s.metrics.RecordError("news_refresh")
		s.log.Warn("news refresh failed, keeping previous calendar", logger.Error(err))
	}
}

// Stop halts the loop and waits for an in-flight refresh to finish.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.done.Wait()
}
