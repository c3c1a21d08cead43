package cloud

import (
	"context"
	"sync"
	"time"

	"github.com/saadjs/checkin-cli/internal/logger"
)

const DefaultDebounce = 600 * time.Millisecond

// Debouncer runs fn once after Trigger stops being called for the quiet
// period. Calls to fn never overlap.
type Debouncer struct {
	delay   time.Duration
	timeout time.Duration
	fn      func(ctx context.Context) error
	log     *logger.Logger

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	stopped bool
	running sync.Mutex
	wg      sync.WaitGroup
}

func NewDebouncer(delay, timeout time.Duration, fn func(ctx context.Context) error, log *logger.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Debouncer{delay: delay, timeout: timeout, fn: fn, log: log}
}

// Trigger schedules a run, restarting the quiet period if one is pending.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	// A timer that already fired may be blocked on mu; its generation no
	// longer matches and it returns without running.
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.wg.Add(1)
	d.mu.Unlock()
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	d.running.Lock()
	defer d.running.Unlock()
	if err := d.fn(ctx); err != nil {
		d.log.Warn("debounced sync failed", "error", err)
	}
}

// Flush runs a pending call now instead of waiting for the quiet period.
func (d *Debouncer) Flush(ctx context.Context) {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.run(ctx)
}

// Stop flushes any pending call, waits for in-flight runs and rejects later
// triggers.
func (d *Debouncer) Stop(ctx context.Context) {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.Flush(ctx)
	d.wg.Wait()
}
