// ABOUTME: Bounded-rate playback poller driving the engine pipeline
// ABOUTME: Owns a cancellable goroutine; Stop is synchronous and idempotent

package engine

import (
	"sync"
	"time"

	"chordgrid/player"
)

// Scheduler polls the playback source at a bounded rate and runs the session
// pipeline once per tick, delivering each snapshot on the updates channel.
// One scheduler is started per play gesture and stopped on pause or unmount;
// the updates channel outlives individual schedulers.
type Scheduler struct {
	session  *Session
	source   player.Source
	updates  chan<- Snapshot
	interval time.Duration

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartScheduler begins polling immediately. tickRate is in Hz; values <= 0
// fall back to 18 Hz, plenty for perceptible smoothness without excess cost.
// Snapshots are sent non-blocking; a slow consumer drops ticks rather than
// stalling the pipeline.
func StartScheduler(session *Session, source player.Source, tickRate int, updates chan<- Snapshot) *Scheduler {
	if tickRate <= 0 {
		tickRate = 18
	}

	s := &Scheduler{
		session:  session,
		source:   source,
		updates:  updates,
		interval: time.Second / time.Duration(tickRate),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go s.run()

	return s
}

// Stop halts scheduling synchronously: when it returns, no further tick will
// fire. Safe to call more than once and from any goroutine.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if !s.source.IsPlaying() {
				continue
			}

			snap := s.session.Tick(s.source.CurrentTime(), time.Now())

			select {
			case s.updates <- snap:
			default:
				// consumer is behind; this tick's snapshot is superseded anyway
			}
		}
	}
}
