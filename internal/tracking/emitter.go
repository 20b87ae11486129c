package tracking

import (
	"context"
	"log"
	"time"
)

// Emission gate tunables. A device transmits when it has moved more than
// MoveThresholdDeg (~11 m) on either axis, or when HeartbeatInterval has
// passed since the last successful transmission, whichever comes first.
const (
	MoveThresholdDeg  = 1e-4
	HeartbeatInterval = 30 * time.Second
)

// Fix is one raw position reading from a device.
type Fix struct {
	Lat      float64
	Lng      float64
	Accuracy *float64
}

// Sink receives the fixes the emitter decides to transmit.
type Sink interface {
	Send(ctx context.Context, fix Fix) error
}

// PresenceSetter flips the user's sharing flag on start/stop.
type PresenceSetter interface {
	SetSharing(ctx context.Context, sharing bool) error
}

// Emitter gates a stream of raw fixes down to the ones worth transmitting.
// It owns the last-transmitted fix and time; the clock is injected so the
// heartbeat rule is testable.
type Emitter struct {
	sink Sink
	now  func() time.Time

	sent     bool
	lastFix  Fix
	lastSent time.Time
}

func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, now: time.Now}
}

// NewEmitterWithClock is for tests that need to control the heartbeat.
func NewEmitterWithClock(sink Sink, now func() time.Time) *Emitter {
	return &Emitter{sink: sink, now: now}
}

// shouldSend applies the three gate rules: first fix, moved, heartbeat.
func (e *Emitter) shouldSend(fix Fix, at time.Time) bool {
	if !e.sent {
		return true
	}
	if abs(fix.Lat-e.lastFix.Lat) > MoveThresholdDeg || abs(fix.Lng-e.lastFix.Lng) > MoveThresholdDeg {
		return true
	}
	return at.Sub(e.lastSent) >= HeartbeatInterval
}

// Observe evaluates one incoming fix. It returns true if the fix was
// transmitted. A failed send does not advance the gate state, so the next
// fix is judged against the last successful transmission and the heartbeat
// rule produces retry pressure.
func (e *Emitter) Observe(ctx context.Context, fix Fix) bool {
	at := e.now()
	if !e.shouldSend(fix, at) {
		return false
	}

	if err := e.sink.Send(ctx, fix); err != nil {
		log.Printf("[tracking] send failed: %v", err)
		return false
	}

	e.sent = true
	e.lastFix = fix
	e.lastSent = at
	return true
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Tracker binds an Emitter to a fix subscription for one sharing session.
// Start flips presence on before any fix is evaluated; Stop cancels the
// subscription and flips presence off.
type Tracker struct {
	emitter  *Emitter
	presence PresenceSetter

	cancel context.CancelFunc
	done   chan struct{}
}

func NewTracker(emitter *Emitter, presence PresenceSetter) *Tracker {
	return &Tracker{emitter: emitter, presence: presence}
}

// Start begins consuming fixes. The fixes channel is owned by the caller's
// positioning layer; closing it ends the session without flipping presence.
func (t *Tracker) Start(ctx context.Context, fixes <-chan Fix) error {
	if err := t.presence.SetSharing(ctx, true); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)
		for {
			select {
			case <-ctx.Done():
				return
			case fix, ok := <-fixes:
				if !ok {
					return
				}
				t.emitter.Observe(ctx, fix)
			}
		}
	}()

	return nil
}

// Stop tears the session down. The presence write is fire-and-forget:
// its error is logged, not returned, so stopping never blocks on it.
func (t *Tracker) Stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil

	if err := t.presence.SetSharing(context.Background(), false); err != nil {
		log.Printf("[tracking] presence stop write failed: %v", err)
	}
}

// Active reports whether a sharing session is running.
func (t *Tracker) Active() bool {
	return t.cancel != nil
}
