// FilePath: internal/reaper/reaper.go
package reaper

import (
	"context"
	"strconv"
	"time"

	"github.com/farmsense/farmhub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Reaper periodically deletes unused registration codes past their
// expiry. Each sweep re-evaluates the query from scratch, so a failed
// run needs no persisted retry state; the next tick covers it.
type Reaper struct {
	codes    repository.RegistrationCodeRepository
	interval time.Duration
	events   *nuts.EventEmitter
	stop     chan struct{}
	done     chan struct{}
}

// New creates a Reaper sweeping at the given interval.
func New(codes repository.RegistrationCodeRepository, interval time.Duration) *Reaper {
	return &Reaper{
		codes:    codes,
		interval: interval,
		events:   nuts.NewEventEmitter(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. The first sweep runs immediately so
// a restart after downtime clears the backlog without waiting a full
// interval.
func (r *Reaper) Start() {
	go r.run()
}

func (r *Reaper) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.sweep()
	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

func (r *Reaper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := r.RunOnce(ctx)
	if err != nil {
		nuts.L.Errorf("[Reaper] Sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		r.events.Emit("codes.reaped", strconv.FormatInt(deleted, 10))
	}
}

// RunOnce performs a single sweep and returns how many codes were
// deleted. Idempotent: a second run with nothing newly expired
// deletes zero rows.
func (r *Reaper) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := r.codes.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	nuts.L.Infof("[Reaper] Removed %d expired registration codes", deleted)
	return deleted, nil
}

// OnReap registers a callback for completed sweeps that deleted codes.
func (r *Reaper) OnReap(handler func(count string)) {
	r.events.On("codes.reaped", "reaper_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if count, ok := args[0].(string); ok {
				handler(count)
			}
		}
	})
}

// Stop ends the sweep loop and waits for the current sweep to finish.
func (r *Reaper) Stop() {
	close(r.stop)
	<-r.done
}
